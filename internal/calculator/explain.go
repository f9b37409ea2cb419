package calculator

import "github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"

// CashFlowRatios lists the ratios of the cash flow analysis in display order.
var CashFlowRatios = []model.Ratio{
	model.RatioOperatingCashFlowMargin,
	model.RatioFreeCashFlow,
	model.RatioFreeCashFlowYield,
}

// CompanyRatios lists the ratios of the company analysis in display order.
var CompanyRatios = []model.Ratio{
	model.RatioCurrentRatio,
	model.RatioDebtToEquity,
	model.RatioReturnOnAssets,
	model.RatioReturnOnEquity,
}

var labels = map[model.Ratio]string{
	model.RatioOperatingCashFlowMargin: "Operating Cash Flow Margin",
	model.RatioFreeCashFlow:            "Free Cash Flow",
	model.RatioFreeCashFlowYield:       "Free Cash Flow Yield",
	model.RatioCurrentRatio:            "Current Ratio",
	model.RatioDebtToEquity:            "Debt to Equity Ratio",
	model.RatioReturnOnAssets:          "Return on Assets",
	model.RatioReturnOnEquity:          "Return on Equity",
}

var explanations = map[model.Ratio]string{
	model.RatioOperatingCashFlowMargin: "The Operating Cash Flow Margin is a profitability ratio that measures cash generated from operations as a percentage of sales. It assesses the efficiency of the company's operations.",
	model.RatioFreeCashFlow:            "Free Cash Flow (FCF) represents the cash that a company is able to generate after spending the money required to maintain or expand its asset base. It allows a company to pursue opportunities that enhance shareholder value.",
	model.RatioFreeCashFlowYield:       "Free Cash Flow Yield (FCFY) is a financial solvency ratio that compares the free cash flow a company earns against its market value, here taken as the market capitalisation at the end of the statement year.",
	model.RatioCurrentRatio:            "The current ratio is a liquidity ratio that measures a company's ability to cover its short-term obligations with its current assets.",
	model.RatioDebtToEquity:            "The debt to equity ratio provides information on a company's leverage, showing the proportion of a company's operations that are financed by debt compared to equity.",
	model.RatioReturnOnAssets:          "Return on assets (ROA) is a profitability ratio that provides how much profit a company is able to generate from its assets.",
	model.RatioReturnOnEquity:          "Return on equity (ROE) is a measure of financial performance, considered the return on net assets. It shows how effectively management is using a company's assets to create profits.",
}

// Label returns the display name of r.
func Label(r model.Ratio) string {
	if l, ok := labels[r]; ok {
		return l
	}
	return string(r)
}

// Explanation returns a one paragraph description of r.
func Explanation(r model.Ratio) string {
	return explanations[r]
}
