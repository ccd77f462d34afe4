package billing

import "math"

// round2 rounds to 2 decimal places, the currency precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DecomposeVAT splits a VAT-inclusive amount into its pre-tax subtotal and
// the embedded tax. The subtotal is rounded first and the tax taken as the
// remainder, so the two parts always sum back to the amount exactly. Do
// not "simplify" this into a single formula; the intermediate rounding is
// what reconciliation reports expect.
func DecomposeVAT(amount, rate float64) (preVatSubtotal, vatAmount float64) {
	preVatSubtotal = round2(amount / (1 + rate))
	vatAmount = round2(amount - preVatSubtotal)
	return preVatSubtotal, vatAmount
}
