// Package selectors derives send screen values from a state snapshot.
//
// Every function is a pure read of the snapshot it is given: nothing is cached,
// nothing is written back, and no I/O happens here. Callers are expected to
// re-run selectors whenever the snapshot changes.
package selectors

import (
	"encoding/json"

	"sendview/pkg/models"

	"github.com/shopspring/decimal"
)

func BlockGasLimit(s *models.State) string {
	return s.MetaMask.CurrentBlockGasLimit
}

func ConversionRate(s *models.State) decimal.Decimal {
	return s.MetaMask.ConversionRate
}

func CurrentCurrency(s *models.State) string {
	return s.MetaMask.CurrentCurrency
}

func NativeCurrency(s *models.State) string {
	return s.MetaMask.NativeCurrency
}

func CurrentNetwork(s *models.State) string {
	return s.MetaMask.Network
}

func SelectedAddress(s *models.State) string {
	return s.MetaMask.SelectedAddress
}

func ForceGasMin(s *models.State) string {
	return s.MetaMask.Send.ForceGasMin
}

func RecentBlocks(s *models.State) []models.Block {
	return s.MetaMask.RecentBlocks
}

func SendAmount(s *models.State) string {
	return s.MetaMask.Send.Amount
}

func SendHexData(s *models.State) string {
	return s.MetaMask.Send.Data
}

func SendHexDataFeatureFlag(s *models.State) bool {
	return s.MetaMask.FeatureFlags.SendHexData
}

func SendEditingTransactionID(s *models.State) string {
	return string(s.MetaMask.Send.EditingTransactionID)
}

func SendErrors(s *models.State) map[string]string {
	return s.Send.Errors
}

// SendFrom returns the sender chosen in the draft, or nil.
func SendFrom(s *models.State) *models.SendAccount {
	return s.MetaMask.Send.From
}

func SendMaxModeState(s *models.State) bool {
	return s.MetaMask.Send.MaxModeOn
}

func SendTo(s *models.State) string {
	return s.MetaMask.Send.To
}

func SendToNickname(s *models.State) string {
	return s.MetaMask.Send.ToNickname
}

func TokenBalance(s *models.State) string {
	return s.MetaMask.Send.TokenBalance
}

func SendEnsResolution(s *models.State) string {
	return s.MetaMask.Send.EnsResolution
}

func SendEnsResolutionError(s *models.State) string {
	return s.MetaMask.Send.EnsResolutionError
}

// UnapprovedTxs returns pending approvals in their stored order.
func UnapprovedTxs(s *models.State) []models.Transaction {
	return s.MetaMask.UnapprovedTxs.Values()
}

func QrCodeData(s *models.State) json.RawMessage {
	return s.AppState.QrCodeData
}

// SelectedAccount returns the raw balance record of the selected address.
func SelectedAccount(s *models.State) (models.Account, bool) {
	return s.MetaMask.Accounts.Get(s.MetaMask.SelectedAddress)
}

// SelectedIdentity returns the identity of the selected address.
func SelectedIdentity(s *models.State) (models.Identity, bool) {
	return s.MetaMask.Identities.Get(s.MetaMask.SelectedAddress)
}
