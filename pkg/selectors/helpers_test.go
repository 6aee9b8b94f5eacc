package selectors

import (
	"testing"

	"sendview/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	tokenDEF = "0x8d6b000000000000000000000000000000000001"
	tokenOMG = "0xd26114cd6ee289accf82350c8d8487fedb8a0c07"
)

// mockState mirrors the send screen fixture the selectors were designed against.
func mockState(t *testing.T) *models.State {
	t.Helper()
	s := &models.State{}
	mm := &s.MetaMask

	mm.Accounts.Set("0xf42e", models.Account{Address: "0xf42e", Balance: "0x0"})
	mm.Accounts.Set("0x0dcd", models.Account{Address: "0x0dcd", Balance: "0x37452b1315889f80"})
	mm.Accounts.Set("0xec1a", models.Account{Address: "0xec1a", Balance: "0x30c9d71831c76efe"})
	mm.Identities.Set("0x0dcd", models.Identity{Address: "0x0dcd", Name: "Send Account 2"})
	mm.Identities.Set("0xec1a", models.Identity{Address: "0xec1a", Name: "Send Account 3"})
	mm.Identities.Set("0xf42e", models.Identity{Address: "0xf42e", Name: "Send Account 1"})

	mm.Tokens = []models.Token{
		{Address: tokenDEF, Symbol: "DEF", Decimals: 18},
		{Address: tokenOMG, Symbol: "OMG", Decimals: 18},
	}
	mm.SelectedTokenAddress = tokenDEF
	mm.SelectedAddress = "0x0dcd"
	mm.Network = "3"
	mm.ConversionRate = decimal.RequireFromString("1200.88200327")
	mm.CurrentCurrency = "usd"
	mm.NativeCurrency = "ETH"
	mm.CurrentBlockGasLimit = "0x4c1878"
	mm.TokenExchangeRates = map[string]models.ExchangeRate{
		"def_eth": {Rate: decimal.NewFromInt(2)},
		"omg_eth": {Rate: decimal.RequireFromString("0.0045")},
	}
	mm.RecentBlocks = []models.Block{
		{GasLimit: "0x4c1c37", GasPrices: []string{"0x4a817c800", "0x3b9aca00"}},
		{GasLimit: "0x4c2be0", GasPrices: []string{"0x77359400"}},
	}
	mm.Send = models.SendDraft{
		From:                 &models.SendAccount{Address: "0xf42e", Balance: "0x5f4e3d2c1b0a"},
		To:                   "0x987fedabc",
		Amount:               "0x080",
		GasLimit:             "0xFFFF",
		GasPrice:             "0xaa",
		Data:                 "0xabc",
		EditingTransactionID: "97531",
		TokenBalance:         "0x3e8",
		ForceGasMin:          "0x0",
	}
	mm.FeatureFlags.SendHexData = true
	mm.UnapprovedTxs.Set("4768706228115573", models.Transaction{ID: 4768706228115573, Time: 1487363153561, Status: "unapproved"})
	mm.UnapprovedMsgs.Set("0xabc", models.Transaction{ID: 3, Time: 1487363153500, MsgParams: &models.MsgParams{From: "0xf42e"}})
	mm.SelectedAddressTxList = []models.Transaction{
		{ID: 1, Time: 1487363153000, TxParams: &models.TxParams{To: tokenDEF}},
		{ID: 2, Time: 1487363153600, TxParams: &models.TxParams{To: "0xabc"}},
	}
	s.Send.Errors = map[string]string{"someError": "someError"}
	s.AppState.QrCodeData = []byte(`{"type":"address"}`)

	require.NoError(t, s.Validate())
	return s
}
