package tui

import (
	"fmt"
	"sort"
	"strings"

	"sendview/pkg/utils"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

func (m model) View() string {
	if m.showHelp {
		return m.viewHelp()
	}
	if m.showGraph {
		return m.viewGasLimitGraph()
	}

	header := m.viewHeader()
	if !m.hasView {
		body := "Waiting for a wallet snapshot..."
		if m.viewErr != "" {
			body = lipgloss.JoinVertical(lipgloss.Left, errStyle.Render("Send view unavailable:"), m.viewErr)
		}
		return lipgloss.JoinVertical(lipgloss.Left, header, "\n", boxStyle.Render(body), "\n", m.viewFooter())
	}

	var sections []string
	sections = append(sections, m.viewSender(), m.viewAmount(), m.viewGas())
	if len(m.view.Errors) > 0 {
		sections = append(sections, m.viewErrors())
	}

	txHeader := tableHeaderStyle.Render(fmt.Sprintf("Transactions (%d)", len(m.view.Transactions)))
	txBox := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, txHeader, m.viewport.View()))

	status := ""
	if m.viewErr != "" {
		status = errStyle.Render(m.viewErr)
	}
	if m.statusMessage != "" {
		status = infoStyle.Render(m.statusMessage)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, sections...),
		txBox,
		status,
		m.viewFooter(),
	)
}

func (m model) viewHeader() string {
	title := titleStyle.Render("sendview " + Version)
	network := m.network.Name
	if network == "" {
		network = "network " + m.view.Network
	}
	spinnerView := ""
	if m.loading {
		spinnerView = m.spinner.View() + " "
	}
	updated := "never"
	if !m.lastUpdate.IsZero() {
		updated = m.lastUpdate.Format("15:04:05")
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		title,
		" ",
		subtleStyle.Render(fmt.Sprintf("%s • %sLast updated: %s", network, spinnerView, updated)),
	)
}

func (m model) viewSender() string {
	v := m.view
	currency := strings.ToUpper(v.CurrentCurrency)
	lines := []string{tableHeaderStyle.Render("From")}

	if v.From != nil {
		name := v.From.Name
		if name == "" {
			name = "Unnamed account"
		}
		lines = append(lines,
			name,
			subtleStyle.Render(m.maskAddress(utils.ShortAddress(v.From.Address))),
			fmt.Sprintf("%s %s", m.displayValue(v.FromEther, m.config.TokenDecimals), v.NativeCurrency),
		)
		if !v.ConversionRate.IsZero() {
			lines = append(lines, subtleStyle.Render(fmt.Sprintf("%s %s",
				m.displayValue(v.FromEther.Mul(v.ConversionRate), m.config.FiatDecimals), currency)))
		}
	}

	if v.Token != nil {
		lines = append(lines, "", fmt.Sprintf("%s %s", m.displayUnits(v.TokenBalance, v.Token.Decimals, m.config.TokenDecimals), v.Token.Symbol))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m model) viewAmount() string {
	v := m.view
	currency := strings.ToUpper(v.CurrentCurrency)
	asset := v.PrimaryCurrency
	if asset == "" {
		asset = v.NativeCurrency
	}

	lines := []string{tableHeaderStyle.Render("Send " + asset)}
	amount, ok := scaledHex(v.Amount, m.amountDecimals())
	if !ok {
		lines = append(lines, errStyle.Render("invalid amount "+v.Amount))
	} else {
		line := fmt.Sprintf("%s %s", m.displayValue(amount, m.config.TokenDecimals), asset)
		if v.MaxModeOn {
			line += subtleStyle.Render(" (max)")
		}
		lines = append(lines, line)
		if !v.AmountConversionRate.IsZero() {
			lines = append(lines, subtleStyle.Render(fmt.Sprintf("%s %s",
				m.displayValue(amount.Mul(v.AmountConversionRate), m.config.FiatDecimals), currency)))
		}
	}

	to := v.To
	if v.ToNickname != "" {
		to = fmt.Sprintf("%s (%s)", v.ToNickname, utils.ShortAddress(v.To))
	}
	if to == "" {
		to = "-"
	}
	lines = append(lines, "", "To: "+m.maskAddress(to))
	if v.EnsResolution != "" {
		lines = append(lines, subtleStyle.Render("ENS: "+m.maskAddress(v.EnsResolution)))
	}
	if v.EnsResolutionError != "" {
		lines = append(lines, errStyle.Render(v.EnsResolutionError))
	}
	if v.HexDataEnabled && v.Data != "" {
		lines = append(lines, subtleStyle.Render("Data: "+utils.TruncateString(v.Data, 24)))
	}

	lines = append(lines, "", fmt.Sprintf("1 %s = %s %s", v.NativeCurrency, v.ConversionRate.String(), currency))
	if v.Token != nil {
		lines = append(lines, fmt.Sprintf("1 %s = %s %s = %s %s",
			v.Token.Symbol, v.TokenExchangeRate.String(), v.NativeCurrency, v.TokenToFiatRate.String(), currency))
	}
	if v.EditingTransactionID != "" {
		lines = append(lines, subtleStyle.Render("Editing tx "+v.EditingTransactionID))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m model) viewGas() string {
	v := m.view
	lines := []string{tableHeaderStyle.Render("Gas")}

	if gwei, ok := gasPriceGwei(v.GasPrice); ok {
		lines = append(lines, fmt.Sprintf("Price: %s Gwei", utils.FormatDecimal(gwei, 2)))
	}
	if limit, ok := scaledHex(v.GasLimit, 0); ok {
		lines = append(lines, fmt.Sprintf("Limit: %s", utils.FormatDecimal(limit, 0)))
	}
	if total, ok := scaledHex(v.GasTotal, 18); ok {
		lines = append(lines, fmt.Sprintf("Total: %s %s", total.String(), v.NativeCurrency))
		if !v.GasTotalFiat.IsZero() {
			lines = append(lines, subtleStyle.Render(fmt.Sprintf("%s %s",
				utils.FormatDecimal(v.GasTotalFiat, m.config.FiatDecimals), strings.ToUpper(v.CurrentCurrency))))
		}
	}
	if block, ok := scaledHex(v.BlockGasLimit, 0); ok && v.BlockGasLimit != "" {
		lines = append(lines, "", subtleStyle.Render("Block limit: "+utils.FormatDecimal(block, 0)))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m model) viewErrors() string {
	keys := make([]string, 0, len(m.view.Errors))
	for k := range m.view.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := []string{errStyle.Render("Errors")}
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, m.view.Errors[k]))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m model) viewFooter() string {
	return subtleStyle.Render("j/k: move • o: open tx • c: copy sender • g: gas limits • p: privacy • r: refresh • ?: help • q: quit")
}

func (m model) viewGasLimitGraph() string {
	header := titleStyle.Render("Recent Block Gas Limits")
	series := blockGasLimitSeries(m.view.BlockGasLimits)

	var graph string
	if len(series) > 1 {
		width := m.width - 20
		if width < 10 {
			width = 10
		}
		height := m.height - 12
		if height < 1 {
			height = 1
		}
		graph = asciigraph.Plot(series,
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption("Block Gas Limit (M gas)"),
		)
	} else {
		graph = "Not enough data to draw graph."
	}

	content := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Center, header, "\n", graph))
	footer := subtleStyle.Render("g/q/esc: back • r: refresh")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, lipgloss.JoinVertical(lipgloss.Center, content, "\n", footer))
}

func (m model) viewHelp() string {
	keys := []string{
		"j / k, up / down   move through transactions",
		"o                  open selected transaction in explorer",
		"c                  copy sender address",
		"g                  recent block gas limits",
		"p                  toggle privacy mode",
		"r                  refresh chain data now",
		"q                  quit",
	}
	content := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Keys"), "\n", strings.Join(keys, "\n")))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
