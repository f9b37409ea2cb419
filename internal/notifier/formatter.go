package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/calculator"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/recorder"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/report"
)

// FormatFundamentals formats the headline ratios of a fundamentals run into a Telegram message.
func FormatFundamentals(r *model.FundamentalsReport) string {
	var b strings.Builder
	f := r.Fundamentals

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> (%s) | %s\n\n",
		html.EscapeString(f.DisplayName()), html.EscapeString(f.Symbol), r.Latest.AsOf.Format("2006-01-02")))

	b.WriteString("💵 <b>Cash flow</b>\n")
	writeRatios(&b, r.Latest, calculator.CashFlowRatios, f.Currency)
	b.WriteString("\n🏢 <b>Company</b>\n")
	writeRatios(&b, r.Latest, calculator.CompanyRatios, f.Currency)

	if r.HTMLPath != "" {
		b.WriteString(fmt.Sprintf("\nReport: <code>%s</code>", html.EscapeString(r.HTMLPath)))
	}
	return b.String()
}

func writeRatios(b *strings.Builder, latest model.LatestRatios, ratios []model.Ratio, currency string) {
	for _, r := range ratios {
		v := report.FormatRatio(r, calculator.Value(latest, r), currency)
		b.WriteString(fmt.Sprintf("  %s: %s\n", calculator.Label(r), v))
	}
}

// FormatPortfolio formats the allocation of every model into a Telegram message.
func FormatPortfolio(r *model.PortfolioReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>Portfolio optimisation</b> | %s\n", time.Now().Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("%d assets, risk free %s\n", len(r.Tickers), report.Percent(r.RiskFreeRate)))

	for _, m := range r.Models {
		b.WriteString(fmt.Sprintf("\n<b>%s</b>\n", m.Kind.Title()))
		b.WriteString(fmt.Sprintf("  return %s | vol %s | sharpe %s\n",
			report.Percent(m.Performance.ExpectedReturn),
			report.Percent(m.Performance.Volatility),
			report.Float(m.Performance.Sharpe, 2)))
		for _, a := range m.Fixed {
			if a.Weight < 0.0005 {
				continue
			}
			b.WriteString(fmt.Sprintf("  %s %s\n", html.EscapeString(a.Ticker), report.Percent(a.Weight)))
		}
	}
	if r.HTMLPath != "" {
		b.WriteString(fmt.Sprintf("\nReport: <code>%s</code>", html.EscapeString(r.HTMLPath)))
	}
	return b.String()
}

// FormatHistory formats recorded fundamentals snapshots, newest first.
func FormatHistory(symbol string, snaps []recorder.FundamentalsSnapshot) string {
	if len(snaps) == 0 {
		return fmt.Sprintf("No recorded fundamentals for %s", html.EscapeString(symbol))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>%s history</b>\n\n", html.EscapeString(symbol)))
	for _, s := range snaps {
		l := s.Latest
		b.WriteString(fmt.Sprintf("%s (FY %s)\n", s.RecordedAt.Format("2006-01-02 15:04"), l.AsOf.Format("2006-01-02")))
		b.WriteString(fmt.Sprintf("  OCF margin %s | FCF yield %s\n",
			report.FormatRatio(model.RatioOperatingCashFlowMargin, l.OperatingCashFlowMargin, ""),
			report.FormatRatio(model.RatioFreeCashFlowYield, l.FreeCashFlowYield, "")))
		b.WriteString(fmt.Sprintf("  current %s | D/E %s | ROE %s\n",
			report.Ratio(l.CurrentRatio), report.Ratio(l.DebtToEquity),
			report.FormatRatio(model.RatioReturnOnEquity, l.ReturnOnEquity, "")))
	}
	return b.String()
}

// FormatError formats a failed run.
func FormatError(task string, err error) string {
	return fmt.Sprintf("❌ <b>%s failed</b>\n\n%s", html.EscapeString(task), html.EscapeString(err.Error()))
}

// HelpText lists the supported bot commands.
const HelpText = `Available commands:
/fundamentals SYMBOL - run the fundamentals report
/portfolio - run the portfolio optimisation report
/history SYMBOL - recent recorded ratios
/help - this message`
