package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordFundamentals(_ *FundamentalsSnapshot) error { return nil }
func (n *NoopRecorder) RecordPortfolio(_ *PortfolioRun) error            { return nil }
func (n *NoopRecorder) Close() error                                     { return nil }

func (n *NoopRecorder) RecentFundamentals(_ string, _ int) ([]FundamentalsSnapshot, error) {
	return nil, nil
}
