package selectors

import (
	"fmt"
	"maps"

	"sendview/pkg/conversion"
	"sendview/pkg/models"

	"github.com/shopspring/decimal"
)

// Deps are the collaborators BuildSendView consults. Zero values are usable.
type Deps struct {
	AddressBook      AddressBook
	EstimateGasPrice GasPriceEstimator
}

// SendView is every derived value the send screen renders.
type SendView struct {
	Network         string `json:"network"`
	NativeCurrency  string `json:"nativeCurrency"`
	CurrentCurrency string `json:"currentCurrency"`

	From        *models.SendAccount `json:"from"`
	FromBalance string              `json:"fromBalance"`
	FromEther   decimal.Decimal     `json:"fromEther"`

	Token           *models.Token `json:"token"`
	PrimaryCurrency string        `json:"primaryCurrency"`
	TokenBalance    string        `json:"tokenBalance,omitempty"`

	ConversionRate       decimal.Decimal `json:"conversionRate"`
	TokenExchangeRate    decimal.Decimal `json:"tokenExchangeRate"`
	TokenToFiatRate      decimal.Decimal `json:"tokenToFiatRate"`
	AmountConversionRate decimal.Decimal `json:"amountConversionRate"`

	GasPrice       string          `json:"gasPrice"`
	GasLimit       string          `json:"gasLimit"`
	GasTotal       string          `json:"gasTotal"`
	GasTotalFiat   decimal.Decimal `json:"gasTotalFiat"`
	BlockGasLimit  string          `json:"blockGasLimit"`
	BlockGasLimits []string        `json:"blockGasLimits,omitempty"`

	To                   string            `json:"to"`
	ToNickname           string            `json:"toNickname,omitempty"`
	Amount               string            `json:"amount"`
	Data                 string            `json:"data,omitempty"`
	HexDataEnabled       bool              `json:"hexDataEnabled"`
	MaxModeOn            bool              `json:"maxModeOn"`
	EditingTransactionID string            `json:"editingTransactionId,omitempty"`
	EnsResolution        string            `json:"ensResolution,omitempty"`
	EnsResolutionError   string            `json:"ensResolutionError,omitempty"`
	Errors               map[string]string `json:"errors,omitempty"`

	SendToAccounts []models.SendAccount `json:"sendToAccounts"`
	Transactions   []models.Transaction `json:"transactions"`
}

// BuildSendView runs every selector against s once.
// It fails when the snapshot is invalid, when no sender can be resolved, or when
// the gas values are not hex magnitudes.
func BuildSendView(s *models.State, deps Deps) (SendView, error) {
	if err := s.Validate(); err != nil {
		return SendView{}, err
	}

	from := SendFromObject(s)
	balance, err := ResolveSendFromBalance(from)
	if err != nil {
		return SendView{}, err
	}
	fromEther := decimal.Zero
	if balance != "" {
		if fromEther, err = conversion.HexWeiToEther(balance); err != nil {
			return SendView{}, fmt.Errorf("sender balance: %w", err)
		}
	}

	token := SelectedToken(s)
	symbol := ResolvePrimaryCurrencyLabel(token)
	nativeRate := ConversionRate(s)
	tokenToFiat := ResolveTokenToFiatRate(s.MetaMask.TokenExchangeRates, symbol, nativeRate)

	gasLimit := GasLimit(s)
	gasPrice := ResolveGasPrice(s.MetaMask.Send.GasPrice, s.MetaMask.RecentBlocks, deps.EstimateGasPrice)
	gasTotal, err := ComputeGasTotal(gasLimit, gasPrice)
	if err != nil {
		return SendView{}, fmt.Errorf("gas total: %w", err)
	}
	gasFiat, err := conversion.HexWeiToFiat(gasTotal, nativeRate)
	if err != nil {
		return SendView{}, fmt.Errorf("gas total: %w", err)
	}

	limits := make([]string, 0, len(s.MetaMask.RecentBlocks))
	for _, b := range s.MetaMask.RecentBlocks {
		limits = append(limits, b.GasLimit)
	}

	return SendView{
		Network:              CurrentNetwork(s),
		NativeCurrency:       NativeCurrency(s),
		CurrentCurrency:      CurrentCurrency(s),
		From:                 from.Clone(),
		FromBalance:          balance,
		FromEther:            fromEther,
		Token:                token,
		PrimaryCurrency:      symbol,
		TokenBalance:         TokenBalance(s),
		ConversionRate:       nativeRate,
		TokenExchangeRate:    ResolveExchangeRate(s.MetaMask.TokenExchangeRates, symbol),
		TokenToFiatRate:      tokenToFiat,
		AmountConversionRate: ResolveAmountConversionRate(token != nil, tokenToFiat, nativeRate),
		GasPrice:             gasPrice,
		GasLimit:             gasLimit,
		GasTotal:             gasTotal,
		GasTotalFiat:         gasFiat,
		BlockGasLimit:        BlockGasLimit(s),
		BlockGasLimits:       limits,
		To:                   SendTo(s),
		ToNickname:           SendToNickname(s),
		Amount:               SendAmount(s),
		Data:                 SendHexData(s),
		HexDataEnabled:       SendHexDataFeatureFlag(s),
		MaxModeOn:            SendMaxModeState(s),
		EditingTransactionID: SendEditingTransactionID(s),
		EnsResolution:        SendEnsResolution(s),
		EnsResolutionError:   SendEnsResolutionError(s),
		Errors:               maps.Clone(SendErrors(s)),
		SendToAccounts:       SendToAccounts(s, deps.AddressBook),
		Transactions:         Transactions(s),
	}, nil
}
