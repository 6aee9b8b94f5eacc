package selectors

import (
	"strings"

	"sendview/pkg/conversion"
	"sendview/pkg/models"

	"github.com/shopspring/decimal"
)

// ExchangeRateKey returns the rate table key for a token symbol.
func ExchangeRateKey(symbol string) string {
	return strings.ToLower(symbol) + "_eth"
}

// ResolveExchangeRate returns the token price in native currency, or zero when
// the table has no entry for symbol.
func ResolveExchangeRate(table map[string]models.ExchangeRate, symbol string) decimal.Decimal {
	rate, ok := table[ExchangeRateKey(symbol)]
	if !ok {
		return decimal.Zero
	}
	return rate.Rate
}

// ResolveTokenToFiatRate returns the token price in fiat: nativeRate times the
// token exchange rate, computed exactly.
func ResolveTokenToFiatRate(table map[string]models.ExchangeRate, symbol string, nativeRate decimal.Decimal) decimal.Decimal {
	return conversion.MultiplyDecimal(nativeRate, ResolveExchangeRate(table, symbol))
}

// ResolveAmountConversionRate returns the rate used to show the send amount in fiat.
// A token transfer uses the token rate; anything else uses the native rate.
func ResolveAmountConversionRate(isTokenActive bool, tokenToFiatRate, nativeRate decimal.Decimal) decimal.Decimal {
	if isTokenActive {
		return tokenToFiatRate
	}
	return nativeRate
}

// SelectedTokenExchangeRate is the exchange rate of the active token, zero if none.
func SelectedTokenExchangeRate(s *models.State) decimal.Decimal {
	return ResolveExchangeRate(s.MetaMask.TokenExchangeRates, ResolvePrimaryCurrencyLabel(SelectedToken(s)))
}

func SelectedTokenToFiatRate(s *models.State) decimal.Decimal {
	return ResolveTokenToFiatRate(s.MetaMask.TokenExchangeRates, ResolvePrimaryCurrencyLabel(SelectedToken(s)), ConversionRate(s))
}

func AmountConversionRate(s *models.State) decimal.Decimal {
	token := SelectedToken(s)
	return ResolveAmountConversionRate(token != nil, SelectedTokenToFiatRate(s), ConversionRate(s))
}

// TokenExchangeRate looks up the exchange rate of an arbitrary token symbol.
func TokenExchangeRate(s *models.State, symbol string) decimal.Decimal {
	return ResolveExchangeRate(s.MetaMask.TokenExchangeRates, symbol)
}
