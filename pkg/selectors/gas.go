package selectors

import (
	"strings"

	"sendview/pkg/conversion"
	"sendview/pkg/gasutil"
	"sendview/pkg/models"
)

// DefaultGasLimit is used when the draft has no gas limit.
const DefaultGasLimit = "0"

// GasPriceEstimator derives a hex gas price from recent blocks.
// Implementations must always return a price.
type GasPriceEstimator func(blocks []models.Block) string

// ResolveGasPrice picks the gas price. Precedence:
//  1. the explicit draft price, when non-empty
//  2. estimate(recentBlocks); a nil estimator means gasutil.EstimateFromRecentBlocks
func ResolveGasPrice(explicit string, recentBlocks []models.Block, estimate GasPriceEstimator) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	if estimate == nil {
		estimate = gasutil.EstimateFromRecentBlocks
	}
	return estimate(recentBlocks)
}

// ResolveGasLimit returns the explicit gas limit or DefaultGasLimit.
func ResolveGasLimit(explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	return DefaultGasLimit
}

// ComputeGasTotal multiplies two hex magnitudes exactly and returns 0x-prefixed hex.
func ComputeGasTotal(gasLimit, gasPrice string) (string, error) {
	return conversion.MultiplyHex(gasLimit, gasPrice)
}

func GasLimit(s *models.State) string {
	return ResolveGasLimit(s.MetaMask.Send.GasLimit)
}

func GasPrice(s *models.State) string {
	return ResolveGasPrice(s.MetaMask.Send.GasPrice, s.MetaMask.RecentBlocks, nil)
}

func GasPriceFromRecentBlocks(s *models.State) string {
	return gasutil.EstimateFromRecentBlocks(s.MetaMask.RecentBlocks)
}

func GasTotal(s *models.State) (string, error) {
	return ComputeGasTotal(GasLimit(s), GasPrice(s))
}
