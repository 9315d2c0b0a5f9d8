package journal

import (
	"database/sql"
	"fmt"
	"time"

	"trendbot/market"
)

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`
		SELECT trade_id, side, entry_price, exit_price, amount, profit_quote, profit_account, open_time, close_time, reason, partial
		FROM trades
		WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesClosedBetween returns trades whose close_time is within [start, end).
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, side, entry_price, exit_price, amount, profit_quote, profit_account, open_time, close_time, reason, partial
		FROM trades
		WHERE close_time >= ? AND close_time < ?
		ORDER BY close_time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanTrade(scan func(dest ...any) error) (TradeRecord, error) {
	var rec TradeRecord
	var side string
	err := scan(
		&rec.TradeID,
		&side,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.Amount,
		&rec.ProfitQuote,
		&rec.ProfitAccount,
		&rec.OpenTime,
		&rec.CloseTime,
		&rec.Reason,
		&rec.Partial,
	)
	rec.Side = market.Side(side)
	return rec, err
}
