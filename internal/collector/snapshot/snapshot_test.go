package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/newthinker/valuator/internal/collector"
	"github.com/newthinker/valuator/internal/core"
	"github.com/newthinker/valuator/internal/statement"
	"github.com/newthinker/valuator/internal/storage/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recorded(t *testing.T) *archive.Records {
	t.Helper()
	fs, err := archive.NewLocalFS(t.TempDir())
	require.NoError(t, err)
	rec := archive.NewRecords(fs)

	for _, fn := range []string{"OVERVIEW", "INCOME_STATEMENT", "BALANCE_SHEET"} {
		data, err := os.ReadFile(filepath.Join("..", "alphavantage", "testdata", fn+".json"))
		require.NoError(t, err)
		require.NoError(t, rec.RecordPayload(context.Background(), "ACME", fn, data))
	}
	return rec
}

func TestSnapshot_Replay(t *testing.T) {
	s := New(recorded(t))
	require.NoError(t, s.Init(collector.Config{}))
	ctx := context.Background()

	o, err := s.FetchOverview(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", o.TextOr(core.FieldName, ""))

	income, err := s.FetchStatements(ctx, "ACME", statement.KindIncome)
	require.NoError(t, err)
	assert.Equal(t, 3, income.Len())
}

func TestSnapshot_MissingPayloadIsNoData(t *testing.T) {
	s := New(recorded(t))

	_, err := s.FetchStatements(context.Background(), "ACME", statement.KindCashFlow)
	assert.True(t, errors.Is(err, core.ErrNoData), "got %v", err)
}

func TestSnapshot_InitWithoutArchive(t *testing.T) {
	err := New(nil).Init(collector.Config{})
	assert.True(t, errors.Is(err, core.ErrConfigMissing))
}
