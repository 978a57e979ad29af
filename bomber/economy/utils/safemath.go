package utils

import (
	"math"
	"math/bits"

	"github.com/iceweasel13/solana-bomber/bomber/economy"
)

// Checked arithmetic for every economic quantity. Overflow is never silent:
// it surfaces as economy.ErrArithmeticOverflow and aborts the operation.

func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, economy.ErrArithmeticOverflow
	}
	return sum, nil
}

func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, economy.ErrArithmeticOverflow
	}
	return diff, nil
}

func Mul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, economy.ErrArithmeticOverflow
	}
	return lo, nil
}

// MulDiv returns floor(a*b/d) using a 128-bit intermediate.
func MulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, economy.ErrInvalidCalculation
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return 0, economy.ErrArithmeticOverflow
	}
	quo, _ := bits.Div64(hi, lo, d)
	return quo, nil
}

// MulChain multiplies every factor, failing on the first overflow.
func MulChain(factors ...uint64) (uint64, error) {
	product := uint64(1)
	for _, f := range factors {
		var err error
		if product, err = Mul(product, f); err != nil {
			return 0, err
		}
	}
	return product, nil
}

// SaturatingSub clamps at zero. Used for hp, which has a floor rather than an error.
func SaturatingSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}

// SaturatingAdd clamps at math.MaxUint64.
func SaturatingAdd(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

// SaturatingMul clamps at math.MaxUint64.
func SaturatingMul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

// ClampUint32 narrows v, saturating at math.MaxUint32.
func ClampUint32(v uint64) uint32 {
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

// ToInt64 converts for storage in signed bigint columns.
func ToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, economy.ErrArithmeticOverflow
	}
	return int64(v), nil
}

// FromInt64 converts a stored bigint back, rejecting negatives.
func FromInt64(v int64) (uint64, error) {
	if v < 0 {
		return 0, economy.ErrInvalidCalculation
	}
	return uint64(v), nil
}

// Elapsed returns now-since in seconds, zero when the clock went backwards.
func Elapsed(now, since int64) uint64 {
	if now <= since {
		return 0
	}
	return uint64(now - since)
}
