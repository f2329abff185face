// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package enctr

import "math/big"

const (
	// BaseDecimals is the decimal exponent of ENCTR, sENCTR and the treasury accounting unit.
	BaseDecimals = 9
	// WrappedDecimals is the decimal exponent of gENCTR.
	WrappedDecimals = 18
	// StableDecimals is the decimal exponent of the common reserve stablecoins.
	StableDecimals = 18
)

var pow10Table [78]*big.Int

func init() {
	pow10Table[0] = big.NewInt(1)
	ten := big.NewInt(10)
	for i := 1; i < len(pow10Table); i++ {
		pow10Table[i] = new(big.Int).Mul(pow10Table[i-1], ten)
	}
}

// Pow10 returns a new big.Int holding 10^n. n must be < 78.
func Pow10(n uint8) *big.Int {
	return new(big.Int).Set(pow10Table[n])
}

// ConvertDecimals rescales amount from one decimal exponent to another.
// Scaling down floors.
func ConvertDecimals(amount *big.Int, from, to uint8) *big.Int {
	switch {
	case from == to:
		return new(big.Int).Set(amount)
	case from > to:
		return new(big.Int).Quo(amount, pow10Table[from-to])
	default:
		return new(big.Int).Mul(amount, pow10Table[to-from])
	}
}

// Units returns n whole units at the given decimal exponent.
func Units(n int64, decimals uint8) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), pow10Table[decimals])
}

// BigMin returns the smaller of x and y.
func BigMin(x, y *big.Int) *big.Int {
	if x.Cmp(y) < 0 {
		return x
	}
	return y
}
