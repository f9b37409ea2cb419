package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/PaesslerAG/jsonpath"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// FMPClient implements StatementFetcher against the Financial Modeling Prep REST API.
type FMPClient struct {
	client *resty.Client
	apiKey string
}

// NewFMPClient creates a client with timeout, retry and optional proxy support.
func NewFMPClient(baseURL, apiKey, proxyURL string, timeout time.Duration, retries int) *FMPClient {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "Mozilla/5.0").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r != nil && (r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500)
		})
	if proxyURL != "" {
		c.SetProxy(proxyURL)
	}
	return &FMPClient{client: c, apiKey: apiKey}
}

func (f *FMPClient) Name() string { return "fmp" }

type fmpIncome struct {
	Date             string          `json:"date"`
	ReportedCurrency string          `json:"reportedCurrency"`
	Revenue          decimal.Decimal `json:"revenue"`
	GrossProfit      decimal.Decimal `json:"grossProfit"`
	OperatingIncome  decimal.Decimal `json:"operatingIncome"`
	NetIncome        decimal.Decimal `json:"netIncome"`
}

type fmpCashFlow struct {
	Date                                 string          `json:"date"`
	ReportedCurrency                     string          `json:"reportedCurrency"`
	NetCashProvidedByOperatingActivities decimal.Decimal `json:"netCashProvidedByOperatingActivities"`
	CapitalExpenditure                   decimal.Decimal `json:"capitalExpenditure"`
	DividendsPaid                        decimal.Decimal `json:"dividendsPaid"`
}

type fmpBalance struct {
	Date                    string          `json:"date"`
	ReportedCurrency        string          `json:"reportedCurrency"`
	CashAndCashEquivalents  decimal.Decimal `json:"cashAndCashEquivalents"`
	TotalCurrentAssets      decimal.Decimal `json:"totalCurrentAssets"`
	TotalCurrentLiabilities decimal.Decimal `json:"totalCurrentLiabilities"`
	TotalAssets             decimal.Decimal `json:"totalAssets"`
	TotalDebt               decimal.Decimal `json:"totalDebt"`
	TotalStockholdersEquity decimal.Decimal `json:"totalStockholdersEquity"`
}

type fmpMarketCap struct {
	Date      string          `json:"date"`
	MarketCap decimal.Decimal `json:"marketCap"`
}

func (f *FMPClient) IncomeStatements(ctx context.Context, symbol string) ([]model.IncomeStatement, error) {
	var raw []fmpIncome
	if err := f.getJSON(ctx, "/income-statement/{symbol}", symbol, &raw); err != nil {
		return nil, err
	}
	out := make([]model.IncomeStatement, 0, len(raw))
	for _, r := range raw {
		d, err := parseFMPDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("income statement: %w", err)
		}
		out = append(out, model.IncomeStatement{
			Date:            d,
			Currency:        r.ReportedCurrency,
			Revenue:         r.Revenue,
			GrossProfit:     r.GrossProfit,
			OperatingIncome: r.OperatingIncome,
			NetIncome:       r.NetIncome,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *FMPClient) CashFlowStatements(ctx context.Context, symbol string) ([]model.CashFlowStatement, error) {
	var raw []fmpCashFlow
	if err := f.getJSON(ctx, "/cash-flow-statement/{symbol}", symbol, &raw); err != nil {
		return nil, err
	}
	out := make([]model.CashFlowStatement, 0, len(raw))
	for _, r := range raw {
		d, err := parseFMPDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("cash flow statement: %w", err)
		}
		out = append(out, model.CashFlowStatement{
			Date:               d,
			Currency:           r.ReportedCurrency,
			OperatingCashFlow:  r.NetCashProvidedByOperatingActivities,
			CapitalExpenditure: r.CapitalExpenditure,
			DividendsPaid:      r.DividendsPaid,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *FMPClient) BalanceSheets(ctx context.Context, symbol string) ([]model.BalanceSheet, error) {
	var raw []fmpBalance
	if err := f.getJSON(ctx, "/balance-sheet-statement/{symbol}", symbol, &raw); err != nil {
		return nil, err
	}
	out := make([]model.BalanceSheet, 0, len(raw))
	for _, r := range raw {
		d, err := parseFMPDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("balance sheet: %w", err)
		}
		out = append(out, model.BalanceSheet{
			Date:                    d,
			Currency:                r.ReportedCurrency,
			CashAndEquivalents:      r.CashAndCashEquivalents,
			TotalCurrentAssets:      r.TotalCurrentAssets,
			TotalCurrentLiabilities: r.TotalCurrentLiabilities,
			TotalAssets:             r.TotalAssets,
			TotalDebt:               r.TotalDebt,
			TotalStockholdersEquity: r.TotalStockholdersEquity,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *FMPClient) MarketCaps(ctx context.Context, symbol string) ([]model.MarketCap, error) {
	var raw []fmpMarketCap
	if err := f.getJSON(ctx, "/historical-market-capitalization/{symbol}", symbol, &raw); err != nil {
		return nil, err
	}
	out := make([]model.MarketCap, 0, len(raw))
	for _, r := range raw {
		d, err := parseFMPDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("market cap: %w", err)
		}
		out = append(out, model.MarketCap{Date: d, Value: r.MarketCap})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// CompanyName looks up the company name from the profile endpoint.
func (f *FMPClient) CompanyName(ctx context.Context, symbol string) (string, error) {
	body, err := f.get(ctx, "/profile/{symbol}", symbol)
	if err != nil {
		return "", err
	}
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("fmp profile decode: %w", err)
	}
	v, err := jsonpath.Get("$[0].companyName", doc)
	if err != nil {
		return "", fmt.Errorf("fmp profile for %s: %w", symbol, err)
	}
	name, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("fmp profile for %s: companyName is %T", symbol, v)
	}
	return name, nil
}

func (f *FMPClient) getJSON(ctx context.Context, path, symbol string, out interface{}) error {
	body, err := f.get(ctx, path, symbol)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("fmp decode %s: %w", strings.ReplaceAll(path, "{symbol}", symbol), err)
	}
	return nil
}

func (f *FMPClient) get(ctx context.Context, path, symbol string) ([]byte, error) {
	endpoint := strings.ReplaceAll(path, "{symbol}", symbol)
	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParam("apikey", f.apiKey).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("fmp fetch %s: %w", endpoint, err)
	}
	body := resp.Body()
	if msg := apiError(body); msg != "" {
		return nil, fmt.Errorf("fmp api error on %s: %s", endpoint, msg)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fmp %s: status %d, body: %s", endpoint, resp.StatusCode(), truncate(resp.String(), 200))
	}
	return body, nil
}

// apiError extracts the message of an error object such as
// {"Error Message": "Invalid API KEY."}.
func apiError(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return ""
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}
	for _, k := range []string{"Error Message", "error", "message"} {
		if s, ok := obj[k].(string); ok && s != "" {
			return s
		}
	}
	return "unexpected object response"
}

func parseFMPDate(s string) (time.Time, error) {
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
