package service

import (
	"strings"

	"buyback-pos/internal/models"

	"github.com/shopspring/decimal"
)

// ParseAmount reads a user typed number; thousands separators are allowed.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	return decimal.NewFromString(raw)
}

// ParseRounding maps a form value to a rounding mode. Anything unknown is
// no rounding.
func ParseRounding(mode string) models.Rounding {
	if strings.EqualFold(strings.TrimSpace(mode), models.RoundHalfUp.Mode) {
		return models.RoundHalfUp
	}
	return models.RoundNone
}

// EstimateLine is the line amount shown while an item is being weighed. The
// backend computes the stored price; this only previews it.
func EstimateLine(weight, unitPrice decimal.Decimal, r models.Rounding) decimal.Decimal {
	if !weight.IsPositive() || unitPrice.IsNegative() {
		return decimal.Zero
	}
	amount := weight.Mul(unitPrice)
	if r.Mode == models.RoundHalfUp.Mode {
		step := decimal.NewFromInt(1)
		if r.Step.Valid && r.Step.Decimal.IsPositive() {
			step = r.Step.Decimal
		}
		amount = amount.Div(step).Round(0).Mul(step)
	}
	return amount.Round(2)
}
