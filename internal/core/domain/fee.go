package domain

import (
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)

	// DefaultFeePercentage is the fee applied to new items when the
	// configuration does not override it.
	DefaultFeePercentage = decimal.NewFromInt(4)
)

// ValidateFeePercentage reports whether pct can be applied to a
// contribution. A fee of 100% or more would leave no net funding.
func ValidateFeePercentage(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThanOrEqual(hundred) {
		return ErrInvalidFeePercentage
	}
	return nil
}

// SplitFee splits a gross contribution into its net and fee parts. The fee
// is floor(gross * pct / 100) computed in exact decimal arithmetic, so
// net + fee == gross always holds.
func SplitFee(gross int64, pct decimal.Decimal) (net, fee int64) {
	feeDec := decimal.NewFromInt(gross).Mul(pct).Shift(-2).Floor()
	fee = feeDec.IntPart()
	return gross - fee, fee
}

// Leftover computes the refund owed when a contribution of net (paying fee)
// pushes progress past goal. netLeftover is the part of net above the goal;
// feeLeftover is the share of fee proportional to netLeftover/net, floored.
// The caller guarantees progressBefore < goal <= progressBefore+net.
func Leftover(progressBefore, goal, net, fee int64) (netLeftover, feeLeftover int64) {
	netLeftover = progressBefore + net - goal
	if netLeftover <= 0 || net == 0 {
		return 0, 0
	}

	// fee * netLeftover can exceed int64, the quotient never does.
	q, _ := decimal.NewFromInt(fee).
		Mul(decimal.NewFromInt(netLeftover)).
		QuoRem(decimal.NewFromInt(net), 0)
	return netLeftover, q.IntPart()
}
