package repositories

import (
	"context"
	"time"

	"github.com/longbinlai/maybe/internal/core/domain"
)

// BalanceReader is the snapshot source consumed by the series builder. Raw
// snapshot computation happens upstream; the core only reads.
type BalanceReader interface {
	// LatestSnapshotAsOf retrieves the most recent balance snapshot for the
	// account at or before the given date, or ErrNotFound when the account
	// has no history yet.
	LatestSnapshotAsOf(ctx context.Context, accountID string, date time.Time) (*domain.BalanceSnapshot, error)
}

// BalanceRepositoryFacade combines all balance-related repository interfaces
type BalanceRepositoryFacade interface {
	BalanceReader
}
