package assets

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func machine(method Method) FixedAsset {
	return FixedAsset{
		PurchasePrice:   decimal.NewFromInt(12000),
		SalvageValue:    decimal.Zero,
		UsefulLifeYears: 5,
		Method:          method,
		Status:          StatusActive,
	}
}

func TestMonthlyChargeStraightLine(t *testing.T) {
	charge := MonthlyCharge(machine(MethodStraightLine))
	assert.Equal(t, "200.00", charge.StringFixed(2))
}

func TestMonthlyChargeStraightLineIsConstant(t *testing.T) {
	asset := machine(MethodStraightLine)
	asset.Accumulated = decimal.NewFromInt(4800)
	charge := MonthlyCharge(asset)
	assert.Equal(t, "200.00", charge.StringFixed(2))
}

func TestMonthlyChargeCapsAtRemainingBase(t *testing.T) {
	asset := machine(MethodStraightLine)
	asset.Accumulated = decimal.NewFromFloat(11950)
	charge := MonthlyCharge(asset)
	assert.Equal(t, "50.00", charge.StringFixed(2))
}

func TestMonthlyChargeZeroWhenFullyDepreciated(t *testing.T) {
	asset := machine(MethodStraightLine)
	asset.Accumulated = decimal.NewFromInt(12000)
	assert.True(t, MonthlyCharge(asset).IsZero())
}

func TestMonthlyChargeDecliningBalanceShrinks(t *testing.T) {
	asset := machine(MethodDecliningBalance)
	first := MonthlyCharge(asset)
	assert.Equal(t, "400.00", first.StringFixed(2))

	asset.Accumulated = asset.Accumulated.Add(first)
	second := MonthlyCharge(asset)
	assert.Equal(t, "386.67", second.StringFixed(2))
	assert.True(t, second.LessThan(first))
}

func TestMonthlyChargeDecliningBalanceFloorsAtSalvage(t *testing.T) {
	asset := machine(MethodDecliningBalance)
	asset.SalvageValue = decimal.NewFromInt(2000)
	asset.Accumulated = decimal.NewFromFloat(9950)
	charge := MonthlyCharge(asset)
	assert.Equal(t, "50.00", charge.StringFixed(2), "book value may not fall below salvage")
}

func TestMonthlyChargeZeroLife(t *testing.T) {
	asset := machine(MethodStraightLine)
	asset.UsefulLifeYears = 0
	assert.True(t, MonthlyCharge(asset).IsZero())
}
