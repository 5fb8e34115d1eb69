// Package validator checks translation and pair requests at the service
// boundary: text must be valid UTF-8 and within the configured length in
// code points.
package validator

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation"
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// Validator enforces the maximum input length.
type Validator struct {
	maxRunes int
}

// New creates a Validator accepting at most maxRunes code points per field.
func New(maxRunes int) *Validator {
	return &Validator{maxRunes: maxRunes}
}

// ValidateText checks a single translation input. Empty input is valid.
func (v *Validator) ValidateText(input string) error {
	if msg := v.checkText(input); msg != "" {
		return &ValidationError{Fields: map[string]string{"input": msg}}
	}
	return nil
}

// ValidateTranslateRequest checks a translation request.
func (v *Validator) ValidateTranslateRequest(req *translation.TranslateRequest) error {
	return v.ValidateText(req.Input)
}

// ValidatePairRequest checks a pair submission. Input is required.
func (v *Validator) ValidatePairRequest(req *translation.PairRequest) error {
	errs := make(map[string]string)
	if strings.TrimSpace(req.Input) == "" {
		errs["input"] = "input is required"
	} else if msg := v.checkText(req.Input); msg != "" {
		errs["input"] = msg
	}
	if msg := v.checkText(req.Output); msg != "" {
		errs["output"] = msg
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func (v *Validator) checkText(s string) string {
	if !utf8.ValidString(s) {
		return "must be valid UTF-8"
	}
	if n := utf8.RuneCountInString(s); v.maxRunes > 0 && n > v.maxRunes {
		return fmt.Sprintf("must be at most %d characters, got %d", v.maxRunes, n)
	}
	return ""
}
