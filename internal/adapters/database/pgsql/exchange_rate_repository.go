package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/longbinlai/maybe/internal/apperrors"
	"github.com/longbinlai/maybe/internal/core/domain"
	portsrepo "github.com/longbinlai/maybe/internal/core/ports/repositories"
	"github.com/longbinlai/maybe/internal/models"
	"github.com/longbinlai/maybe/internal/utils/mapping"
)

const exchangeRateColumns = `
	exchange_rate_id, from_currency_code, to_currency_code, rate, date_effective,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxExchangeRateRepository implements the exchange rate repository using pgxpool.
type PgxExchangeRateRepository struct {
	BaseRepository
}

// NewPgxExchangeRateRepository creates a new PgxExchangeRateRepository.
func NewPgxExchangeRateRepository(db *pgxpool.Pool) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

func scanExchangeRate(row pgx.Row) (*domain.ExchangeRate, error) {
	var m models.ExchangeRate
	err := row.Scan(
		&m.ExchangeRateID, &m.FromCurrencyCode, &m.ToCurrencyCode,
		&m.Rate, &m.DateEffective, &m.CreatedAt,
		&m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	d := mapping.ToDomainExchangeRate(m)
	return &d, nil
}

// FindRateByID retrieves an exchange rate by its ID.
func (r *PgxExchangeRateRepository) FindRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error) {
	query := `SELECT` + exchangeRateColumns + ` FROM exchange_rates WHERE exchange_rate_id = $1;`

	rate, err := scanExchangeRate(r.Pool.QueryRow(ctx, query, rateID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: exchange rate %s", apperrors.ErrNotFound, rateID)
		}
		return nil, fmt.Errorf("failed to get exchange rate by ID: %w", err)
	}
	return rate, nil
}

// FindRateByDate retrieves the rate stored for the exact (from, to, date) key.
func (r *PgxExchangeRateRepository) FindRateByDate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, date time.Time) (*domain.ExchangeRate, error) {
	query := `SELECT` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2 AND date_effective = $3;`

	rate, err := scanExchangeRate(r.Pool.QueryRow(ctx, query,
		strings.ToUpper(fromCurrencyCode), strings.ToUpper(toCurrencyCode), date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no exchange rate for %s to %s on %s",
				apperrors.ErrNotFound, fromCurrencyCode, toCurrencyCode, date.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("failed to find exchange rate by date: %w", err)
	}
	return rate, nil
}

// FindRateAsOf retrieves the most recent rate for the pair at or before the given date.
func (r *PgxExchangeRateRepository) FindRateAsOf(ctx context.Context, fromCurrencyCode, toCurrencyCode string, date time.Time) (*domain.ExchangeRate, error) {
	query := `SELECT` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2 AND date_effective <= $3
		ORDER BY date_effective DESC
		LIMIT 1;`

	rate, err := scanExchangeRate(r.Pool.QueryRow(ctx, query,
		strings.ToUpper(fromCurrencyCode), strings.ToUpper(toCurrencyCode), date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no exchange rate for %s to %s at or before %s",
				apperrors.ErrNotFound, fromCurrencyCode, toCurrencyCode, date.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("failed to find exchange rate as of date: %w", err)
	}
	return rate, nil
}

// FindLatestRate retrieves the most recent rate for the pair regardless of date.
func (r *PgxExchangeRateRepository) FindLatestRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string) (*domain.ExchangeRate, error) {
	query := `SELECT` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2
		ORDER BY date_effective DESC
		LIMIT 1;`

	rate, err := scanExchangeRate(r.Pool.QueryRow(ctx, query,
		strings.ToUpper(fromCurrencyCode), strings.ToUpper(toCurrencyCode)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no exchange rate for %s to %s",
				apperrors.ErrNotFound, fromCurrencyCode, toCurrencyCode)
		}
		return nil, fmt.Errorf("failed to find latest exchange rate: %w", err)
	}
	return rate, nil
}

// ListRates retrieves rates with optional pair filtering, newest first.
func (r *PgxExchangeRateRepository) ListRates(ctx context.Context, fromCurrencyCode, toCurrencyCode *string, page, pageSize int) ([]domain.ExchangeRate, int, error) {
	baseQuery := `FROM exchange_rates WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if fromCurrencyCode != nil {
		baseQuery += fmt.Sprintf(" AND from_currency_code = $%d", argNum)
		args = append(args, strings.ToUpper(*fromCurrencyCode))
		argNum++
	}
	if toCurrencyCode != nil {
		baseQuery += fmt.Sprintf(" AND to_currency_code = $%d", argNum)
		args = append(args, strings.ToUpper(*toCurrencyCode))
		argNum++
	}

	var total int
	if err := r.Pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count exchange rates: %w", err)
	}
	if total == 0 {
		return []domain.ExchangeRate{}, 0, nil
	}

	baseQuery += " ORDER BY date_effective DESC, from_currency_code, to_currency_code"
	offset := (page - 1) * pageSize
	baseQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, pageSize, offset)

	rows, err := r.Pool.Query(ctx, "SELECT"+exchangeRateColumns+" "+baseQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	defer rows.Close()

	var rates []domain.ExchangeRate
	for rows.Next() {
		rate, err := scanExchangeRate(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan exchange rate: %w", err)
		}
		rates = append(rates, *rate)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating exchange rates: %w", err)
	}

	return rates, total, nil
}

// ListCurrencyPairs retrieves every distinct (from, to) pair with at least one stored rate.
func (r *PgxExchangeRateRepository) ListCurrencyPairs(ctx context.Context) ([]domain.CurrencyPair, error) {
	query := `SELECT DISTINCT from_currency_code, to_currency_code FROM exchange_rates;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list currency pairs: %w", err)
	}
	defer rows.Close()

	var pairs []domain.CurrencyPair
	for rows.Next() {
		var pair domain.CurrencyPair
		if err := rows.Scan(&pair.FromCurrencyCode, &pair.ToCurrencyCode); err != nil {
			return nil, fmt.Errorf("failed to scan currency pair: %w", err)
		}
		pairs = append(pairs, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating currency pairs: %w", err)
	}
	return pairs, nil
}

// FindOrCreateRate persists a rate unless one already exists for its
// (from, to, date) key; the stored rate is authoritative and never silently
// overwritten. The select-then-insert runs in a transaction; the unique
// index on the key makes a concurrent duplicate insert fail rather than
// create a second row.
func (r *PgxExchangeRateRepository) FindOrCreateRate(ctx context.Context, rate domain.ExchangeRate) (*domain.ExchangeRate, bool, error) {
	fromCurrency := strings.ToUpper(rate.FromCurrencyCode)
	toCurrency := strings.ToUpper(rate.ToCurrencyCode)
	if fromCurrency == toCurrency {
		return nil, false, fmt.Errorf("%w: from and to currencies cannot be the same", apperrors.ErrValidation)
	}

	modelRate := mapping.ToModelExchangeRate(rate)
	modelRate.FromCurrencyCode = fromCurrency
	modelRate.ToCurrencyCode = toCurrency

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	existing, err := scanExchangeRate(tx.QueryRow(ctx,
		`SELECT`+exchangeRateColumns+`
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2 AND date_effective = $3`,
		fromCurrency, toCurrency, modelRate.DateEffective,
	))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to check for existing exchange rate: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO exchange_rates (
			exchange_rate_id, from_currency_code, to_currency_code, rate, date_effective,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		modelRate.ExchangeRateID, modelRate.FromCurrencyCode, modelRate.ToCurrencyCode,
		modelRate.Rate, modelRate.DateEffective, modelRate.CreatedAt,
		modelRate.CreatedBy, modelRate.LastUpdatedAt, modelRate.LastUpdatedBy,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert exchange rate: %w", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, false, err
	}

	created := mapping.ToDomainExchangeRate(modelRate)
	return &created, true, nil
}

// DeleteRate removes a rate by ID, returning the deleted rate.
func (r *PgxExchangeRateRepository) DeleteRate(ctx context.Context, rateID string) (*domain.ExchangeRate, error) {
	query := `DELETE FROM exchange_rates WHERE exchange_rate_id = $1 RETURNING` + exchangeRateColumns + `;`

	rate, err := scanExchangeRate(r.Pool.QueryRow(ctx, query, rateID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: exchange rate %s", apperrors.ErrNotFound, rateID)
		}
		return nil, fmt.Errorf("failed to delete exchange rate: %w", err)
	}
	return rate, nil
}
