// Package conversion holds the exact big-number math used for currency and gas values.
// Hex magnitudes are unsigned and may carry a 0x prefix; rates are decimals.
package conversion

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

// ErrInvalidHex is returned for a string that is not an unsigned hex magnitude.
var ErrInvalidHex = errors.New("invalid hex magnitude")

const (
	weiPerEtherExp = 18
	weiPerGweiExp  = 9
)

// ParseHex decodes an unsigned hex magnitude. Leading zeros are accepted.
func ParseHex(s string) (*big.Int, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if digits == "" || strings.ContainsAny(digits[:1], "+-") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return v, nil
}

// EncodeHex renders v as a 0x-prefixed hex string.
func EncodeHex(v *big.Int) string {
	if v == nil {
		return "0x0"
	}
	return hexutil.EncodeBig(v)
}

// MultiplyHex returns the exact product of two hex magnitudes, hex encoded.
func MultiplyHex(a, b string) (string, error) {
	x, err := ParseHex(a)
	if err != nil {
		return "", err
	}
	y, err := ParseHex(b)
	if err != nil {
		return "", err
	}
	return EncodeHex(new(big.Int).Mul(x, y)), nil
}

// MultiplyDecimal returns a*b without rounding.
func MultiplyDecimal(a, b decimal.Decimal) decimal.Decimal {
	return a.Mul(b)
}

// WeiToEther converts a wei amount to ether.
func WeiToEther(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -weiPerEtherExp)
}

// WeiToGwei converts a wei amount to gwei.
func WeiToGwei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -weiPerGweiExp)
}

// GweiToWeiHex converts a gwei amount to hex wei. Fractions of a wei are truncated.
func GweiToWeiHex(gwei decimal.Decimal) string {
	return EncodeHex(gwei.Shift(weiPerGweiExp).BigInt())
}

// HexWeiToEther parses a hex wei magnitude and converts it to ether.
func HexWeiToEther(hexWei string) (decimal.Decimal, error) {
	wei, err := ParseHex(hexWei)
	if err != nil {
		return decimal.Zero, err
	}
	return WeiToEther(wei), nil
}

// HexWeiToFiat values a hex wei magnitude at rate fiat units per ether.
func HexWeiToFiat(hexWei string, rate decimal.Decimal) (decimal.Decimal, error) {
	eth, err := HexWeiToEther(hexWei)
	if err != nil {
		return decimal.Zero, err
	}
	return eth.Mul(rate), nil
}
