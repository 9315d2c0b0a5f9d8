package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSV struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

// NewCSV opens (or creates) both journal files in append mode, writing the
// header row only when a file is new. Records accumulate across process
// restarts; the journal is an audit mirror and must survive reopens.
func NewCSV(tradesPath, equityPath string) (*CSV, error) {
	tf, tw, err := openAppend(tradesPath, []string{"trade_id", "side", "entry_price", "exit_price", "amount", "profit_quote", "profit_account", "open_time", "close_time", "reason", "partial"})
	if err != nil {
		return nil, err
	}
	ef, ew, err := openAppend(equityPath, []string{"time", "balance", "equity"})
	if err != nil {
		tf.Close()
		return nil, err
	}

	return &CSV{tw, ew, tf, ef}, nil
}

func openAppend(path string, header []string) (*os.File, *csv.Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, nil, err
		}
	}
	return f, w, nil
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		string(t.Side),
		f(t.EntryPrice),
		f(t.ExitPrice),
		f(t.Amount),
		f(t.ProfitQuote),
		f(t.ProfitAccount),
		t.OpenTime.Format(time.RFC3339),
		t.CloseTime.Format(time.RFC3339),
		t.Reason,
		strconv.FormatBool(t.Partial),
	})
	if err != nil {
		return err
	}

	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	err := j.equity.Write([]string{
		e.Time.Format(time.RFC3339),
		f(e.Balance),
		f(e.Equity),
	})
	if err != nil {
		return err
	}

	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	if err := j.ef.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
