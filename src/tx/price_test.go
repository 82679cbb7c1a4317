package tx

import (
	"math/big"
	"testing"
)

func TestMinCostMonotonic(t *testing.T) {
	sizes := []int64{
		0, 1, 100, 4096, 1 << 20, 5 << 20,
		LinearSizeLimit - 2, LinearSizeLimit - 1, LinearSizeLimit,
		LinearSizeLimit + 1, 20 << 20, 1 << 30,
	}

	for _, diff := range []int64{1, 10, 25, 100} {
		prev := big.NewInt(-1)
		for _, size := range sizes {
			cost := MinCost(size, diff)
			if cost.Cmp(prev) < 0 {
				t.Fatalf("cost decreased at size=%d diff=%d: %s < %s", size, diff, cost, prev)
			}
			prev = cost
		}
	}
}

func TestMinCostBoundary(t *testing.T) {
	diff := int64(3)

	below := MinCost(LinearSizeLimit-1, diff)
	at := MinCost(LinearSizeLimit, diff)

	// The two branches agree at the boundary to within one unit of
	// integer-division rounding.
	gap := new(big.Int).Sub(at, below)

	// Step expected from one extra byte on the linear branch
	step := big.NewInt(CostPerByte * DiffCenter / diff)

	if gap.Sign() < 0 || gap.Cmp(new(big.Int).Add(step, big.NewInt(1))) > 0 {
		t.Fatalf("discontinuity at the 10MiB boundary: below=%s at=%s", below, at)
	}
}

func TestMinCostSuperLinear(t *testing.T) {
	diff := int64(1)

	// Doubling the size beyond the limit should far more than double the cost
	base := MinCost(LinearSizeLimit, diff)
	double := MinCost(2*LinearSizeLimit, diff)

	ratio := new(big.Int).Div(double, base)

	if ratio.Int64() < 3 {
		t.Fatalf("super-linear branch should grow faster than linear: ratio %s", ratio)
	}
}

func TestMinCostNoOverflow(t *testing.T) {
	// size * (size + 3208) * CostPerByte * DiffCenter exceeds 64 bits here
	size := int64(1) << 40

	cost := MinCost(size, 1)

	if cost.Sign() <= 0 {
		t.Fatalf("cost should be positive at extreme sizes, got %s", cost)
	}

	if cost.Cmp(MinCost(size-1, 1)) < 0 {
		t.Fatalf("cost should not decrease at extreme sizes")
	}
}

func TestCostAboveMin(t *testing.T) {
	generous := NewDataReward([]byte("TEST DATA"), WinstonFromAR(10))

	if !CostAboveMin(generous, 1) {
		t.Fatalf("AR(10) should cover 9 bytes at difficulty 1")
	}

	stingy := NewDataReward([]byte("TEST DATA"), big.NewInt(1))

	if CostAboveMin(stingy, 10) {
		t.Fatalf("1 winston should not cover 9 bytes at difficulty 10")
	}
}

func TestWinstonFromAR(t *testing.T) {
	if WinstonFromAR(1).Cmp(big.NewInt(WinstonPerAR)) != 0 {
		t.Fatalf("1 AR should be %d winston", int64(WinstonPerAR))
	}
}
