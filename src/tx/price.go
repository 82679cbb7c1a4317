package tx

import "math/big"

// Pricing constants. The cost of storing a byte is expressed in winston and
// scaled by the current network difficulty around DiffCenter.
const (
	// WinstonPerAR is the number of winston in one AR token.
	WinstonPerAR = 1_000_000_000_000

	// BaseBytesPerAR is the number of bytes one AR buys at the center
	// difficulty.
	BaseBytesPerAR = 1_000_000

	// CostPerByte is the linear storage price in winston.
	CostPerByte = WinstonPerAR / BaseBytesPerAR

	// DiffCenter is the difficulty at which prices are nominal.
	DiffCenter = 25

	// txOverhead is the maximum combined size of the non-data fields.
	txOverhead = 3208

	// LinearSizeLimit is the data size at which the super-linear pricing
	// branch engages.
	LinearSizeLimit = 10 * 1024 * 1024
)

// MinCost returns the minimum reward, in winston, that a transaction with
// the given data size must offer at the given difficulty. Below
// LinearSizeLimit the price is linear in size; from the limit upwards it
// grows with the square of the size. All divisions floor.
//
// The arithmetic is carried out on big.Int: the super-linear branch
// multiplies size by itself and by CostPerByte*DiffCenter, which overflows
// 64-bit integers at sizes well within the valid input range.
func MinCost(size int64, diff int64) *big.Int {
	scale := big.NewInt(CostPerByte * DiffCenter)

	cost := big.NewInt(size + txOverhead)
	cost.Mul(cost, scale)

	div := big.NewInt(diff)

	if size >= LinearSizeLimit {
		cost.Mul(cost, big.NewInt(size))
		div.Mul(div, big.NewInt(LinearSizeLimit))
	}

	return cost.Div(cost, div)
}

// CostAboveMin reports whether the transaction's reward covers the minimum
// cost of its data at the given difficulty.
func CostAboveMin(t *Transaction, diff int64) bool {
	return amount(t.Reward).Cmp(MinCost(int64(len(t.Data)), diff)) >= 0
}

// WinstonFromAR converts whole AR to winston.
func WinstonFromAR(ar int64) *big.Int {
	w := big.NewInt(ar)
	return w.Mul(w, big.NewInt(WinstonPerAR))
}
