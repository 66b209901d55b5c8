package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/positions"
	"github.com/etnz/positions/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, time.January, 10, 9, 0, 0, 123456789, time.UTC)

func usd(v float64) positions.Money { return positions.M(v, "USD") }

func scenario() []positions.Transaction {
	s := positions.NewSell(3, t0.Add(2*time.Minute), "alice", "ARS", positions.Q(7), usd(20))
	s.TotalPrice = usd(139.5)
	s.Memo = "fees"
	return []positions.Transaction{
		positions.NewBuy(1, t0, "alice", "ARS", positions.Q(5), usd(10)),
		positions.NewBuy(2, t0.Add(time.Minute), "alice", "ARS", positions.Q(5), usd(14.25)),
		s,
	}
}

func TestSQLite_SaveAndLedger(t *testing.T) {
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	txs := scenario()
	// stored out of order, read back in processing order
	require.NoError(t, db.Save(ctx, txs[2], txs[0]))
	require.NoError(t, db.Save(ctx, txs[1]))

	ledger, err := db.Ledger(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, ledger.Len())
	assert.Equal(t, "USD", ledger.Currency())

	got := ledger.Transactions()
	for i, want := range txs {
		assert.Equal(t, want.ID, got[i].ID)
		assert.True(t, want.CreatedAt.Equal(got[i].CreatedAt), "created at %v, want %v", got[i].CreatedAt, want.CreatedAt)
		assert.Equal(t, want.Action, got[i].Action)
		assert.True(t, want.Quantity.Equal(got[i].Quantity))
		assert.True(t, want.Price.Equal(got[i].Price), "price %s, want %s", got[i].Price, want.Price)
		assert.True(t, want.TotalPrice.Equal(got[i].TotalPrice))
		assert.Equal(t, want.Memo, got[i].Memo)
	}

	// the stored ledger answers like the original one.
	a, err := positions.NewAccountant(ledger, nil).Attribution(3)
	require.NoError(t, err)
	assert.True(t, a.Profit.Equal(usd(139.5-50-2*14.25)), "profit %s", a.Profit)
}

func TestSQLite_SaveRejects(t *testing.T) {
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	txs := scenario()
	require.NoError(t, db.Save(ctx, txs[0]))

	// duplicate id: the whole batch is rolled back.
	err = db.Save(ctx, txs[1], txs[0])
	assert.Error(t, err)

	invalid := positions.NewBuy(9, t0, "alice", "ARS", positions.Q(0), usd(1))
	err = db.Save(ctx, invalid)
	assert.True(t, errors.Is(err, positions.ErrInvalidTransaction), "error %v", err)

	ledger, err := db.Ledger(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.Len())
}

func TestSQLite_Reopen(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "positions.db")
	ctx := context.Background()

	db, err := store.Open(dsn)
	require.NoError(t, err)
	require.NoError(t, db.Save(ctx, scenario()...))
	require.NoError(t, db.Close())

	db, err = store.Open(dsn)
	require.NoError(t, err)
	defer db.Close()

	ledger, err := db.Ledger(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, ledger.Len())
	assert.Equal(t, positions.ID(4), ledger.NextID())
}
