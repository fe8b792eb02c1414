package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/longbinlai/maybe/internal/apperrors"
	"github.com/longbinlai/maybe/internal/core/domain"
	portsrepo "github.com/longbinlai/maybe/internal/core/ports/repositories"
	"github.com/longbinlai/maybe/internal/models"
	"github.com/longbinlai/maybe/internal/utils/mapping"
)

// PgxBalanceRepository implements the balance snapshot source using pgxpool.
// Snapshots are written upstream; this repository only reads.
type PgxBalanceRepository struct {
	BaseRepository
}

// NewPgxBalanceRepository creates a new PgxBalanceRepository.
func NewPgxBalanceRepository(db *pgxpool.Pool) *PgxBalanceRepository {
	return &PgxBalanceRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.BalanceRepositoryFacade = (*PgxBalanceRepository)(nil)

// LatestSnapshotAsOf retrieves the most recent balance snapshot for the
// account at or before the given date. Snapshot history is sparse; this is
// the "last known value" half of the forward-fill semantics.
func (r *PgxBalanceRepository) LatestSnapshotAsOf(ctx context.Context, accountID string, date time.Time) (*domain.BalanceSnapshot, error) {
	query := `
		SELECT balance_id, account_id, date,
			end_balance, end_cash_balance, end_non_cash_balance,
			start_balance, start_cash_balance, start_non_cash_balance,
			flows_factor,
			created_at, created_by, last_updated_at, last_updated_by
		FROM balances
		WHERE account_id = $1 AND date <= $2
		ORDER BY date DESC
		LIMIT 1;`

	var m models.Balance
	err := r.Pool.QueryRow(ctx, query, accountID, date).Scan(
		&m.BalanceID, &m.AccountID, &m.Date,
		&m.EndBalance, &m.EndCashBalance, &m.EndNonCashBalance,
		&m.StartBalance, &m.StartCashBalance, &m.StartNonCashBalance,
		&m.FlowsFactor,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no balance snapshot for account %s at or before %s",
				apperrors.ErrNotFound, accountID, date.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("failed to find balance snapshot: %w", err)
	}

	snapshot := mapping.ToDomainBalance(m)
	return &snapshot, nil
}
