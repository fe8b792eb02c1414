package apperrors

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrProvider indicates that the external rate provider was unreachable or
// returned malformed data. It is recovered locally by the fallback chain and
// should never surface to API callers directly.
var ErrProvider = errors.New("rate provider error")

// ErrConversion indicates that no usable exchange rate was found after
// exhausting the full fallback chain.
var ErrConversion = errors.New("currency conversion error")

// ConversionError carries the currency pair and date for which no usable
// exchange rate could be resolved. It wraps ErrConversion so callers can
// match it with errors.Is.
type ConversionError struct {
	FromCurrencyCode string
	ToCurrencyCode   string
	Date             time.Time
}

// NewConversionError creates a ConversionError for the given pair and date.
func NewConversionError(from, to string, date time.Time) *ConversionError {
	return &ConversionError{
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		Date:             date,
	}
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("couldn't find exchange rate from %s to %s on %s",
		e.FromCurrencyCode, e.ToCurrencyCode, e.Date.Format("2006-01-02"))
}

func (e *ConversionError) Unwrap() error {
	return ErrConversion
}
