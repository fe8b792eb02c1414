package repositories

import (
	"context"

	"github.com/longbinlai/maybe/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves an account by its ID.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccountCurrencies retrieves the distinct set of native currency
	// codes across the given accounts. The series builder uses it to compute
	// the static fallback rate once per currency instead of once per date.
	ListAccountCurrencies(ctx context.Context, accountIDs []string) ([]string, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
}
