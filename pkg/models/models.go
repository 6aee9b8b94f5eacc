package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// State is the normalized snapshot every selector reads.
type State struct {
	MetaMask MetaMask `json:"metamask"`
	Send     SendUI   `json:"send"`
	AppState AppState `json:"appState"`
}

// MetaMask holds the wallet controller state.
type MetaMask struct {
	Accounts              OrderedMap[Account]     `json:"accounts"`
	Identities            OrderedMap[Identity]    `json:"identities"`
	Tokens                []Token                 `json:"tokens"`
	SelectedTokenAddress  string                  `json:"selectedTokenAddress,omitempty"`
	SelectedAddress       string                  `json:"selectedAddress"`
	Send                  SendDraft               `json:"send"`
	TokenExchangeRates    map[string]ExchangeRate `json:"tokenExchangeRates"`
	RecentBlocks          []Block                 `json:"recentBlocks"`
	Network               string                  `json:"network"`
	ConversionRate        decimal.Decimal         `json:"conversionRate"`
	CurrentCurrency       string                  `json:"currentCurrency"`
	NativeCurrency        string                  `json:"nativeCurrency"`
	UnapprovedTxs         OrderedMap[Transaction] `json:"unapprovedTxs"`
	UnapprovedMsgs        OrderedMap[Transaction] `json:"unapprovedMsgs"`
	SelectedAddressTxList []Transaction           `json:"selectedAddressTxList"`
	ShapeShiftTxList      []Transaction           `json:"shapeShiftTxList,omitempty"`
	FeatureFlags          FeatureFlags            `json:"featureFlags"`
	CurrentBlockGasLimit  string                  `json:"currentBlockGasLimit"`
}

// Account is a balance record keyed by address. Balance is a hex wei magnitude.
type Account struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

// Identity is the user-facing metadata for an owned address.
// Members other than address and name are kept in Extra.
type Identity struct {
	Address string                     `json:"address"`
	Name    string                     `json:"name"`
	Extra   map[string]json.RawMessage `json:"-"`
}

// SendAccount is an Account overlaid with its Identity.
type SendAccount struct {
	Address string                     `json:"address"`
	Balance string                     `json:"balance,omitempty"`
	Name    string                     `json:"name,omitempty"`
	Extra   map[string]json.RawMessage `json:"-"`
}

// Token is an ERC-20 asset tracked by the wallet.
type Token struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals,omitempty"`
}

// ExchangeRate is the token price in native currency.
type ExchangeRate struct {
	Rate decimal.Decimal `json:"rate"`
}

// SendDraft is the transaction being composed on the send screen.
type SendDraft struct {
	From                 *SendAccount `json:"from,omitempty"`
	To                   string       `json:"to"`
	ToNickname           string       `json:"toNickname"`
	Amount               string       `json:"amount"`
	GasLimit             string       `json:"gasLimit"`
	GasPrice             string       `json:"gasPrice"`
	Data                 string       `json:"data"`
	Token                *Token       `json:"token,omitempty"`
	MaxModeOn            bool         `json:"maxModeOn"`
	EditingTransactionID TxID         `json:"editingTransactionId"`
	EnsResolution        string       `json:"ensResolution"`
	EnsResolutionError   string       `json:"ensResolutionError"`
	TokenBalance         string       `json:"tokenBalance"`
	ForceGasMin          string       `json:"forceGasMin"`
}

// TxParams are the on-chain parameters of a transaction.
type TxParams struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Value    string `json:"value,omitempty"`
	Gas      string `json:"gas,omitempty"`
	GasPrice string `json:"gasPrice,omitempty"`
	Data     string `json:"data,omitempty"`
	Nonce    string `json:"nonce,omitempty"`
}

// MsgParams are the parameters of a signature request.
type MsgParams struct {
	From string `json:"from"`
	Data string `json:"data"`
}

// Transaction is an entry of the activity feed. Time is a millisecond timestamp.
// Members without a typed field are kept in Extra.
type Transaction struct {
	ID        int64                      `json:"id,omitempty"`
	Time      int64                      `json:"time"`
	Status    string                     `json:"status,omitempty"`
	Type      string                     `json:"type,omitempty"`
	Hash      string                     `json:"hash,omitempty"`
	TxParams  *TxParams                  `json:"txParams,omitempty"`
	MsgParams *MsgParams                 `json:"msgParams,omitempty"`
	Extra     map[string]json.RawMessage `json:"-"`
}

// Block is a recently observed block. Hex magnitudes throughout.
type Block struct {
	Number    string   `json:"number,omitempty"`
	GasLimit  string   `json:"gasLimit"`
	GasPrices []string `json:"gasPrices,omitempty"`
}

// FeatureFlags toggles optional send screen features.
type FeatureFlags struct {
	SendHexData bool `json:"sendHexData"`
}

// SendUI is the send screen UI state.
type SendUI struct {
	Errors map[string]string `json:"errors"`
}

// AppState is the app-wide UI state.
type AppState struct {
	QrCodeData json.RawMessage `json:"qrCodeData,omitempty"`
}
