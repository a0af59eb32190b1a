package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/equilibra/internal/model"
	"github.com/ivanoskov/equilibra/internal/repository"
)

const testUser = "user-1"

// fixedNow is mid-month so both month boundaries are far away.
var fixedNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func newTestTracker(t *testing.T, opts ...Option) (*Tracker, *repository.MemoryRepository) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewTracker(repo, zerolog.New(io.Discard), opts...), repo
}

func tx(typ model.TransactionType, amount float64, date model.Date, category string) model.Transaction {
	t := model.Transaction{
		UserID:      testUser,
		Description: string(typ),
		Amount:      amount,
		Type:        typ,
		Date:        date,
	}
	if category != "" {
		t.Category = model.Ptr(category)
	}
	return t
}

func seed(t *testing.T, repo *repository.MemoryRepository, txs ...model.Transaction) {
	t.Helper()
	for i := range txs {
		require.NoError(t, repo.CreateTransaction(context.Background(), &txs[i]))
	}
}

func day(m time.Month, d int) model.Date {
	return model.DateOf(2024, m, d)
}
