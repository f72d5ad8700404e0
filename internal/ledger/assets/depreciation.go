package assets

import "github.com/shopspring/decimal"

var (
	twelve = decimal.NewFromInt(12)
	two    = decimal.NewFromInt(2)
)

// MonthlyCharge computes the depreciation amount for one period, rounded to
// two decimal places and capped so total depreciation never exceeds the
// depreciable base.
//
// Straight-line: (price − salvage) / life / 12, constant per month.
// Declining-balance: book value × (2 / life) / 12, shrinking as book value
// falls, floored at the salvage value.
func MonthlyCharge(asset FixedAsset) decimal.Decimal {
	if asset.UsefulLifeYears <= 0 {
		return decimal.Zero
	}
	remaining := asset.CurrentValue().Sub(asset.SalvageValue)
	if !remaining.IsPositive() {
		return decimal.Zero
	}
	life := decimal.NewFromInt(int64(asset.UsefulLifeYears))
	var charge decimal.Decimal
	switch asset.Method {
	case MethodDecliningBalance:
		rate := two.Div(life)
		charge = asset.CurrentValue().Mul(rate).Div(twelve).Round(2)
	default:
		charge = asset.DepreciableBase().Div(life).Div(twelve).Round(2)
	}
	if charge.GreaterThan(remaining) {
		charge = remaining
	}
	return charge
}
