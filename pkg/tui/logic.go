package tui

import (
	"fmt"
	"strings"
	"time"

	"sendview/pkg/conversion"
	"sendview/pkg/models"
	"sendview/pkg/selectors"
	"sendview/pkg/utils"
	"sendview/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

// blockGasLimitSeries converts hex gas limits to millions of gas for plotting.
// Malformed entries are skipped.
func blockGasLimitSeries(limits []string) []float64 {
	series := make([]float64, 0, len(limits))
	for _, l := range limits {
		v, err := conversion.ParseHex(l)
		if err != nil {
			continue
		}
		series = append(series, utils.DecimalToFloat64(decimal.NewFromBigInt(v, -6)))
	}
	return series
}

// scaledHex interprets a hex base-unit amount with the given decimals.
func scaledHex(hexAmount string, decimals int) (decimal.Decimal, bool) {
	if hexAmount == "" {
		return decimal.Zero, true
	}
	v, err := conversion.ParseHex(hexAmount)
	if err != nil {
		return decimal.Zero, false
	}
	return decimal.NewFromBigInt(v, int32(-decimals)), true
}

// gasPriceGwei converts a hex wei gas price to gwei.
func gasPriceGwei(hexPrice string) (decimal.Decimal, bool) {
	wei, err := conversion.ParseHex(hexPrice)
	if err != nil {
		return decimal.Zero, false
	}
	return conversion.WeiToGwei(wei), true
}

// amountDecimals is the scale of the amount being sent.
func (m model) amountDecimals() int {
	if m.view.Token != nil {
		return m.view.Token.Decimals
	}
	return 18
}

func txCounterparty(tx models.Transaction) string {
	switch {
	case tx.TxParams != nil && tx.TxParams.To != "":
		return tx.TxParams.To
	case tx.MsgParams != nil:
		return "sign request"
	default:
		return "-"
	}
}

func formatTxTime(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return time.UnixMilli(ms).Format("2006-01-02 15:04:05")
}

func (m model) txRows(txs []models.Transaction) []string {
	rows := make([]string, 0, len(txs))
	for i, tx := range txs {
		cursor := "  "
		if i == m.txIdx {
			cursor = "> "
		}
		status := tx.Status
		if status == "" {
			status = "-"
		}
		rows = append(rows, fmt.Sprintf("%s%-19s %-12s %s",
			cursor,
			formatTxTime(tx.Time),
			utils.TruncateString(status, 12),
			m.maskAddress(txCounterparty(tx)),
		))
	}
	return rows
}

func (m *model) updateTxViewport() {
	if len(m.view.Transactions) == 0 {
		m.viewport.SetContent(subtleStyle.Render("No transactions."))
		return
	}
	m.viewport.SetContent(strings.Join(m.txRows(m.view.Transactions), "\n"))
}

// applyEvent folds a watcher event into the model.
func (m *model) applyEvent(ev watcher.Event) {
	switch ev.Type {
	case watcher.EventViewUpdated:
		if v, ok := ev.Data.(selectors.SendView); ok {
			m.view = v
			m.hasView = true
			m.viewErr = ""
			m.loading = false
			m.lastUpdate = time.Now()
			if m.txIdx >= len(v.Transactions) {
				m.txIdx = 0
			}
			m.updateTxViewport()
		}
	case watcher.EventStatusUpdated:
		if msg, ok := ev.Data.(string); ok {
			m.viewErr = msg
			m.loading = false
		}
	case watcher.EventRefreshDone:
		m.loading = false
	}
}

func listenForWatcher(sub watcher.Subscriber) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub
		if !ok {
			return nil
		}
		return ev
	}
}
