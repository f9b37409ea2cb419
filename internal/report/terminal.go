package report

import (
	"fmt"
	"strings"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/calculator"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/charmbracelet/glamour"
)

// FundamentalsMarkdown summarises r as markdown.
func FundamentalsMarkdown(r *model.FundamentalsReport) string {
	var sb strings.Builder
	f := r.Fundamentals
	fmt.Fprintf(&sb, "# %s (%s)\n\n", f.DisplayName(), f.Symbol)
	fmt.Fprintf(&sb, "Latest statement: %s\n\n", r.Latest.AsOf.Format("2006-01-02"))
	sb.WriteString("| Ratio | Latest |\n|---|---:|\n")
	for _, ratios := range [][]model.Ratio{calculator.CashFlowRatios, calculator.CompanyRatios} {
		for _, item := range ratioItems(r.Latest, ratios, f.Currency) {
			fmt.Fprintf(&sb, "| %s | %s |\n", item.Label, item.Value)
		}
	}
	if r.HTMLPath != "" {
		fmt.Fprintf(&sb, "\nReport: `%s`\n", r.HTMLPath)
	}
	return sb.String()
}

// PortfolioMarkdown summarises r as markdown.
func PortfolioMarkdown(r *model.PortfolioReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Portfolio optimisation\n\n%d assets, risk free rate %s\n\n", len(r.Tickers), Percent(r.RiskFreeRate))
	for _, m := range r.Models {
		fmt.Fprintf(&sb, "## %s\n\n", m.Kind.Title())
		fmt.Fprintf(&sb, "Return %s, volatility %s, Sharpe %s\n\n",
			Percent(m.Performance.ExpectedReturn), Percent(m.Performance.Volatility), Float(m.Performance.Sharpe, 3))
		sb.WriteString("| Ticker | Weight |\n|---|---:|\n")
		for _, a := range m.Weights {
			fmt.Fprintf(&sb, "| %s | %s |\n", a.Ticker, Percent(a.Weight))
		}
		sb.WriteString("\n")
	}
	if r.HTMLPath != "" {
		fmt.Fprintf(&sb, "Report: `%s`\n", r.HTMLPath)
	}
	return sb.String()
}

// Terminal renders markdown for display in a terminal.
func Terminal(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("terminal renderer: %w", err)
	}
	return r.Render(md)
}
