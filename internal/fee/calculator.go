package fee

import "github.com/shopspring/decimal"

// CalculateFee returns fee = round(amount*rate) + fixedFee and net = amount - fee.
// The percentage part is rounded half away from zero to whole currency units.
func CalculateFee(amount, rate, fixedFee decimal.Decimal) (fee, net decimal.Decimal) {
	fee = amount.Mul(rate).Round(0).Add(fixedFee)
	net = amount.Sub(fee)
	return fee, net
}
