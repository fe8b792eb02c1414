package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/longbinlai/maybe/internal/apperrors"
	"github.com/longbinlai/maybe/internal/core/domain"
	portsrepo "github.com/longbinlai/maybe/internal/core/ports/repositories"
	"github.com/longbinlai/maybe/internal/models"
	"github.com/longbinlai/maybe/internal/utils/mapping"
)

// PgxAccountRepository implements the account repository using pgxpool.
type PgxAccountRepository struct {
	BaseRepository
}

// NewPgxAccountRepository creates a new PgxAccountRepository.
func NewPgxAccountRepository(db *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `
		SELECT account_id, name, currency_code, classification,
			created_at, created_by, last_updated_at, last_updated_by
		FROM accounts
		WHERE account_id = $1;`

	var m models.Account
	err := r.Pool.QueryRow(ctx, query, accountID).Scan(
		&m.AccountID, &m.Name, &m.CurrencyCode, &m.Classification,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to find account by ID: %w", err)
	}

	account := mapping.ToDomainAccount(m)
	return &account, nil
}

// ListAccountCurrencies retrieves the distinct native currency codes across
// the given accounts.
func (r *PgxAccountRepository) ListAccountCurrencies(ctx context.Context, accountIDs []string) ([]string, error) {
	query := `
		SELECT DISTINCT currency_code
		FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY currency_code;`

	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list account currencies: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan account currency: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account currencies: %w", err)
	}
	return codes, nil
}
