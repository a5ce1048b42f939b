package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestEntryRepository_NextSequence(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginTx(t, mockPool)
	mockPool.ExpectQuery(`SELECT COALESCE\(MAX\(sequence\), 0\) \+ 1 FROM journal_entries`).
		WithArgs("p-1").
		WillReturnRows(pgxmock.NewRows([]string{"next"}).AddRow(int64(4)))

	repo := NewEntryRepository(nil)

	next, err := repo.NextSequence(context.Background(), tx, "p-1")
	require.NoError(t, err)
	require.Equal(t, int64(4), next)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestEntryRepository_NextSequence_EmptyPeriod(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginTx(t, mockPool)
	mockPool.ExpectQuery(`SELECT COALESCE\(MAX\(sequence\), 0\) \+ 1 FROM journal_entries`).
		WithArgs("p-empty").
		WillReturnRows(pgxmock.NewRows([]string{"next"}).AddRow(int64(1)))

	repo := NewEntryRepository(nil)

	next, err := repo.NextSequence(context.Background(), tx, "p-empty")
	require.NoError(t, err)
	require.Equal(t, int64(1), next, "first sequence in a period is 1")
}

func TestDecimalToNumeric(t *testing.T) {
	for _, s := range []string{"0", "100", "100.50", "-23.45", "0.01"} {
		d := decimal.RequireFromString(s)

		n := decimalToNumeric(d)
		require.True(t, n.Valid, "numeric for %s", s)

		got := numericToDecimal(n)
		require.True(t, got.Equal(d), "round trip of %s gave %s", s, got)
	}
}

func TestNumericToDecimal_Null(t *testing.T) {
	var n pgtype.Numeric

	require.True(t, numericToDecimal(n).IsZero(), "null numeric reads as zero")
}
