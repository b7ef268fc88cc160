package currency

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnavailable indicates the requested currency is unknown or inactive,
	// or that no platform default is configured.
	ErrUnavailable = errors.New("currency unavailable")

	// ErrInvalidAmount indicates an amount is not positive or carries more
	// fractional digits than the currency allows.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Currency describes a unit of account supported by the platform.
type Currency struct {
	Code          string
	Name          string
	DecimalPlaces int32
	Active        bool
	IsDefault     bool
}

// ValidateAmount checks that an amount is positive and fits the currency scale.
func (c Currency) ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !amount.Round(c.DecimalPlaces).Equal(amount) {
		return ErrInvalidAmount
	}
	return nil
}
