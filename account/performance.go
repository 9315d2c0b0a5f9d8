package account

// Summary aggregates trading performance from the history.
type Summary struct {
	TotalTrades     int     `json:"total_trades"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
	TotalProfit     float64 `json:"total_profit"`
	WinRate         float64 `json:"win_rate"`
	CurrentBalance  float64 `json:"current_balance"`
	StartingBalance float64 `json:"starting_balance"`
	TotalReturn     float64 `json:"total_return"`
}

// PerformanceSummary folds over the trade history. Zero-profit trades count
// as neither wins nor losses; the win rate is 0 for an empty history.
func (a *Account) PerformanceSummary() Summary {
	s := Summary{
		CurrentBalance:  a.Balance,
		StartingBalance: a.StartBalance,
		TotalReturn:     a.Balance - a.StartBalance,
	}

	for _, t := range a.History {
		s.TotalTrades++
		s.TotalProfit += t.ProfitAccount
		switch {
		case t.ProfitAccount > 0:
			s.WinningTrades++
		case t.ProfitAccount < 0:
			s.LosingTrades++
		}
	}

	if s.TotalTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
	}
	return s
}
