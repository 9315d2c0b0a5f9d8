package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"trendbot/market"
)

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	tradesData, err := os.ReadFile(tradesPath)
	assert.NoError(t, err)
	equityData, err := os.ReadFile(equityPath)
	assert.NoError(t, err)

	tradesReader := csv.NewReader(strings.NewReader(string(tradesData)))
	tradesHeader, err := tradesReader.Read()
	assert.NoError(t, err)

	equityReader := csv.NewReader(strings.NewReader(string(equityData)))
	equityHeader, err := equityReader.Read()
	assert.NoError(t, err)

	wantTrades := []string{"trade_id", "side", "entry_price", "exit_price", "amount", "profit_quote", "profit_account", "open_time", "close_time", "reason", "partial"}
	assert.Equal(t, wantTrades, tradesHeader)

	wantEquity := []string{"time", "balance", "equity"}
	assert.Equal(t, wantEquity, equityHeader)
}

func TestCSVJournalRecordTrade(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	assert.NoError(t, err)

	open := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	closeT := time.Date(2025, 1, 2, 4, 5, 6, 0, time.UTC)

	err = j.RecordTrade(TradeRecord{
		TradeID:       "T1",
		Side:          market.Long,
		EntryPrice:    65000,
		ExitPrice:     65650,
		Amount:        0.0005,
		ProfitQuote:   0.325,
		ProfitAccount: 27.625,
		OpenTime:      open,
		CloseTime:     closeT,
		Reason:        "TP1",
		Partial:       true,
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	data, err := os.ReadFile(tradesPath)
	assert.NoError(t, err)

	r := csv.NewReader(strings.NewReader(string(data)))
	rows, err := r.ReadAll()
	assert.NoError(t, err)
	assert.Len(t, rows, 2)

	row := rows[1]
	assert.Equal(t, "T1", row[0])
	assert.Equal(t, "LONG", row[1])
	assert.Equal(t, "65000.000000", row[2])
	assert.Equal(t, "65650.000000", row[3])
	assert.Equal(t, "0.000500", row[4])
	assert.Equal(t, open.Format(time.RFC3339), row[7])
	assert.Equal(t, "TP1", row[9])
	assert.Equal(t, "true", row[10])
}

func TestCSVJournalAppendsAcrossReopens(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	open := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	closeT := open.Add(time.Hour)

	// Each invocation opens the journal fresh, as the CLI does. Earlier
	// records must survive the reopen and the header must not repeat.
	for i, id := range []string{"T1", "T2"} {
		j, err := NewCSV(tradesPath, equityPath)
		assert.NoError(t, err)

		err = j.RecordTrade(TradeRecord{
			TradeID:    id,
			Side:       market.Long,
			EntryPrice: 65000,
			ExitPrice:  65650,
			Amount:     0.0005,
			OpenTime:   open,
			CloseTime:  closeT,
			Reason:     "TP1",
			Partial:    true,
		})
		assert.NoError(t, err, i)
		assert.NoError(t, j.RecordEquity(EquitySnapshot{Time: closeT, Balance: 10000, Equity: 10000}), i)
		assert.NoError(t, j.Close(), i)
	}

	data, err := os.ReadFile(tradesPath)
	assert.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "trade_id", rows[0][0])
	assert.Equal(t, "T1", rows[1][0])
	assert.Equal(t, "T2", rows[2][0])

	data, err = os.ReadFile(equityPath)
	assert.NoError(t, err)

	rows, err = csv.NewReader(strings.NewReader(string(data))).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "time", rows[0][0])
}

func TestCSVJournalRecordEquity(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	assert.NoError(t, err)

	when := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	err = j.RecordEquity(EquitySnapshot{
		Time:    when,
		Balance: 10027.63,
		Equity:  10055.10,
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	data, err := os.ReadFile(equityPath)
	assert.NoError(t, err)

	r := csv.NewReader(strings.NewReader(string(data)))
	rows, err := r.ReadAll()
	assert.NoError(t, err)
	assert.Len(t, rows, 2)

	row := rows[1]
	assert.Equal(t, when.Format(time.RFC3339), row[0])
	assert.Equal(t, "10027.630000", row[1])
	assert.Equal(t, "10055.100000", row[2])
}
