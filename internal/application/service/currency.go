package service

import (
	"strings"

	"github.com/sangkips/invoicer-api/pkg/apperror"
)

// normalizeCurrency upper-cases an ISO 4217 code, using fallback when empty
func normalizeCurrency(code, fallback string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" {
		c = fallback
	}
	if len(c) != 3 {
		return "", apperror.NewValidationError([]apperror.FieldError{
			{Field: "currency", Message: "Currency must be a 3-letter ISO code"},
		})
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return "", apperror.NewValidationError([]apperror.FieldError{
				{Field: "currency", Message: "Currency must be a 3-letter ISO code"},
			})
		}
	}
	return c, nil
}
