package report

import (
	"bytes"
	"html/template"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/yuin/goldmark"
)

var descriptions = map[model.ModelKind]string{
	model.ModelMeanVariance: `**Mean Variance Optimization** picks the long-only portfolio with the
highest *Sharpe ratio*, trading expected return against volatility as
estimated from historical prices. Weights lie in [0, 1] and sum to one.`,
	model.ModelHRP: `**Hierarchical Risk Parity** clusters assets by the correlation of their
returns, orders them so similar assets sit together, then splits capital
between clusters in inverse proportion to their variance. It does not use
expected returns and never inverts the covariance matrix.`,
	model.ModelBlackLitterman: `**Black-Litterman** blends a prior of expected returns with the investor's
*absolute views*, weighting each view by its uncertainty. The posterior
returns are turned into weights which may be negative; the pie chart shows
the allocation with short positions removed.`,
	model.ModelCLA: `**Critical Line Algorithm** traces the efficient frontier exactly through
its turning points, then searches each segment for the portfolio with the
highest Sharpe ratio.`,
}

// Description returns the markdown description of kind rendered as HTML.
func Description(kind model.ModelKind) template.HTML {
	src, ok := descriptions[kind]
	if !ok {
		return template.HTML(template.HTMLEscapeString(kind.Title()))
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}
