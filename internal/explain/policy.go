// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package explain

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxPolicyPages bounds extraction for very large documents.
const maxPolicyPages = 200

// LoadPolicyText extracts the plain text of a policy PDF, cleaned with
// CleanText. Pages that fail to extract are skipped; a document with no
// extractable text is an error.
func LoadPolicyText(path string) (string, error) {
	f, r, err := pdf.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("error opening policy PDF: %w", err)
	}
	defer f.Close()

	pages := r.NumPage()
	if pages > maxPolicyPages {
		pages = maxPolicyPages
	}

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteByte(' ')
	}

	cleaned := CleanText(sb.String())
	if cleaned == "" {
		return "", fmt.Errorf("policy PDF %s has no extractable text", filepath.Base(path))
	}
	return cleaned, nil
}

// CleanText collapses whitespace runs to single spaces and drops ASCII
// control characters.
func CleanText(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, collapsed)
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
