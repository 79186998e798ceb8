// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"policy-guard/internal/classifier"
	"policy-guard/internal/config"
	"policy-guard/internal/detector"
	"policy-guard/internal/explain"
	"policy-guard/internal/merger"
	"policy-guard/internal/metrics"
	"policy-guard/internal/observability"
	"policy-guard/internal/resilience"
	"policy-guard/internal/validators/creditcard"
	"policy-guard/internal/validators/email"
	"policy-guard/internal/validators/phone"
)

// checkOrder is the declaration order of the pattern validators; matches are
// reported in this order.
var checkOrder = []detector.Category{email.Category, phone.Category, creditcard.Category}

// ParseChecksToRun converts a slice of check names into an enabled-checks map.
// An empty slice or ["all"] enables every check.
func ParseChecksToRun(checks []string) map[detector.Category]bool {
	result := make(map[detector.Category]bool, len(checkOrder))
	for _, c := range checkOrder {
		result[c] = false
	}

	if len(checks) == 0 || (len(checks) == 1 && strings.EqualFold(strings.TrimSpace(checks[0]), "all")) {
		for key := range result {
			result[key] = true
		}
		return result
	}

	for _, check := range checks {
		name := detector.Category(strings.ToUpper(strings.TrimSpace(check)))
		if _, exists := result[name]; exists {
			result[name] = true
		}
	}

	return result
}

// BuildValidatorSet constructs the enabled pattern validators in declaration
// order.
func BuildValidatorSet(enabledChecks map[detector.Category]bool) []detector.Validator {
	var result []detector.Validator
	for _, c := range checkOrder {
		if !enabledChecks[c] {
			continue
		}
		switch c {
		case email.Category:
			result = append(result, email.NewValidator())
		case phone.Category:
			result = append(result, phone.NewValidator())
		case creditcard.Category:
			result = append(result, creditcard.NewValidator())
		}
	}
	return result
}

// NewScannerFromConfig wires the classifier sidecar, pattern validators,
// merger and explainer described by cfg. reg may be nil to skip metrics.
func NewScannerFromConfig(cfg *config.Config, observer *observability.StandardObserver, reg prometheus.Registerer) (*Scanner, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	var (
		cls      detector.Classifier
		breakers []*resilience.CircuitBreaker
	)
	if cfg.Classifier.Enabled {
		policy := retryPolicy("classifier", cfg.Classifier.Retry, observer)
		breakers = append(breakers, policy.Breaker)
		client := classifier.New(classifier.Options{
			BaseURL:     cfg.Classifier.URL,
			Timeout:     cfg.Classifier.Timeout,
			OffsetUnits: classifier.OffsetUnits(cfg.Classifier.OffsetUnits),
			Policy:      policy,
		})
		client.SetObserver(observer)
		cls = client
	}

	det := detector.NewDualSourceDetector(
		cls,
		BuildValidatorSet(ParseChecksToRun(cfg.Detector.Patterns)),
		detector.NewNormalizer(cfg.Detector.MinConfidence),
	)
	det.SetObserver(observer)

	mode, err := merger.ParseMode(cfg.Merge.Mode)
	if err != nil {
		return nil, err
	}

	explainer, explainBreaker, err := buildExplainer(cfg, observer)
	if err != nil {
		return nil, err
	}
	if explainBreaker != nil {
		breakers = append(breakers, explainBreaker)
	}

	return NewScanner(Options{
		Detector:           det,
		Merger:             merger.New(merger.Options{Mode: mode, MaxGap: cfg.Merge.MaxGap}),
		Explainer:          explainer,
		ExplainConcurrency: cfg.Explain.Concurrency,
		Observer:           observer,
		Metrics:            metrics.NewScanMetrics(reg),
		Breakers:           breakers,
	})
}

// buildExplainer returns the configured explainer and, for remote modes, the
// circuit breaker guarding it.
func buildExplainer(cfg *config.Config, observer *observability.StandardObserver) (detector.Explainer, *resilience.CircuitBreaker, error) {
	switch cfg.Explain.Mode {
	case "none":
		return nil, nil, nil
	case "static":
		return explain.NewStaticExplainer(cfg.Explain.Static), nil, nil
	}

	var policyText string
	if cfg.Explain.PolicyPDF != "" {
		text, err := explain.LoadPolicyText(cfg.Explain.PolicyPDF)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load policy document: %w", err)
		}
		policyText = text
		observer.Logger().WithField("chars", len(policyText)).Info("policy document loaded")
	}

	policy := retryPolicy("explainer", cfg.Explain.Retry, observer)
	e := explain.NewLLMExplainer(explain.LLMOptions{
		BaseURL:         cfg.Explain.BaseURL,
		APIKey:          cfg.Explain.APIKey,
		Model:           cfg.Explain.Model,
		PolicyText:      policyText,
		MaxContextChars: cfg.Explain.MaxContextChars,
		Timeout:         cfg.Explain.Timeout,
		Policy:          policy,
	})
	e.SetObserver(observer)
	return e, policy.Breaker, nil
}

func retryPolicy(name string, rs config.RetrySettings, observer *observability.StandardObserver) resilience.Policy {
	retry := resilience.DefaultRetryConfig()
	retry.MaxRetries = rs.MaxRetries
	if rs.InitialInterval > 0 {
		retry.InitialInterval = rs.InitialInterval
	}
	if rs.MaxInterval > 0 {
		retry.MaxInterval = rs.MaxInterval
	}
	retry.OnRetry = func(attempt int, err error) {
		observer.Logger().WithField("service", name).WithField("attempt", attempt).
			WithError(err).Debug("retrying call")
	}

	breaker := resilience.DefaultCircuitBreakerConfig(name)
	if rs.FailureThreshold > 0 {
		breaker.FailureThreshold = rs.FailureThreshold
	}
	if rs.OpenTimeout > 0 {
		breaker.Timeout = rs.OpenTimeout
	}
	breaker.OnStateChange = func(n string, from, to resilience.CircuitBreakerState) {
		observer.Logger().WithField("service", n).
			WithField("from", from.String()).WithField("to", to.String()).
			Warn("circuit breaker state changed")
	}

	return resilience.Policy{Retry: retry, Breaker: resilience.NewCircuitBreaker(breaker)}
}
