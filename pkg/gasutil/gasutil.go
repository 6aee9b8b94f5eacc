// Package gasutil estimates a gas price from recently observed blocks.
package gasutil

import (
	"math/big"
	"slices"

	"sendview/pkg/conversion"
	"sendview/pkg/models"

	"github.com/shopspring/decimal"
)

// OneGweiHex is the fallback price when no block carries price data.
var OneGweiHex = conversion.GweiToWeiHex(decimal.NewFromInt(1))

// EstimateFromRecentBlocks takes the lowest gas price of each block and returns
// the median of those minimums. Blocks without usable prices count as 1 gwei.
func EstimateFromRecentBlocks(blocks []models.Block) string {
	if len(blocks) == 0 {
		return OneGweiHex
	}
	oneGwei, _ := conversion.ParseHex(OneGweiHex)

	lowest := make([]*big.Int, 0, len(blocks))
	for _, b := range blocks {
		low := lowestPrice(b.GasPrices)
		if low == nil {
			low = oneGwei
		}
		lowest = append(lowest, low)
	}
	slices.SortFunc(lowest, func(a, b *big.Int) int { return a.Cmp(b) })
	return conversion.EncodeHex(lowest[len(lowest)/2])
}

func lowestPrice(prices []string) *big.Int {
	var low *big.Int
	for _, p := range prices {
		v, err := conversion.ParseHex(p)
		if err != nil {
			continue
		}
		if low == nil || v.Cmp(low) < 0 {
			low = v
		}
	}
	return low
}
