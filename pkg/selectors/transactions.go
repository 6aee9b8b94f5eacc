package selectors

import (
	"cmp"
	"slices"

	"sendview/pkg/models"
)

// LegacyExchangeNetwork is the only network whose legacy exchange list is shown.
const LegacyExchangeNetwork = "1"

// MergeTransactions concatenates the feed sources in fixed order: primary list,
// unapproved messages, then the legacy exchange list when network is
// LegacyExchangeNetwork. The result is a new slice.
func MergeTransactions(network string, primary, unapprovedMsgs, legacy []models.Transaction) []models.Transaction {
	n := len(primary) + len(unapprovedMsgs)
	includeLegacy := network == LegacyExchangeNetwork
	if includeLegacy {
		n += len(legacy)
	}
	out := make([]models.Transaction, 0, n)
	out = append(out, primary...)
	out = append(out, unapprovedMsgs...)
	if includeLegacy {
		out = append(out, legacy...)
	}
	return out
}

// FilterByToken keeps transactions sent to tokenAddress. Entries without
// txParams are dropped. An empty tokenAddress keeps everything.
func FilterByToken(txs []models.Transaction, tokenAddress string) []models.Transaction {
	if tokenAddress == "" {
		return txs
	}
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.TxParams != nil && tx.TxParams.To == tokenAddress {
			out = append(out, tx)
		}
	}
	return out
}

// SortByRecency orders txs newest first. Equal times keep their relative order.
func SortByRecency(txs []models.Transaction) {
	slices.SortStableFunc(txs, func(a, b models.Transaction) int {
		return cmp.Compare(b.Time, a.Time)
	})
}

// Transactions returns the activity feed for the send screen.
func Transactions(s *models.State) []models.Transaction {
	mm := &s.MetaMask
	txs := MergeTransactions(mm.Network, mm.SelectedAddressTxList, mm.UnapprovedMsgs.Values(), mm.ShapeShiftTxList)
	txs = FilterByToken(txs, mm.SelectedTokenAddress)
	SortByRecency(txs)
	return txs
}
