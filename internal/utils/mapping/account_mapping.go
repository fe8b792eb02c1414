package mapping

import (
	"github.com/longbinlai/maybe/internal/core/domain"
	"github.com/longbinlai/maybe/internal/models"
)

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:      m.AccountID,
		Name:           m.Name,
		CurrencyCode:   m.CurrencyCode,
		Classification: domain.AccountClassification(m.Classification),
		AuditFields:    toDomainAuditFields(m.AuditFields),
	}
}

// ToDomainBalance converts a model Balance to a domain BalanceSnapshot
func ToDomainBalance(m models.Balance) domain.BalanceSnapshot {
	return domain.BalanceSnapshot{
		BalanceID:           m.BalanceID,
		AccountID:           m.AccountID,
		Date:                m.Date,
		EndBalance:          m.EndBalance,
		EndCashBalance:      m.EndCashBalance,
		EndNonCashBalance:   m.EndNonCashBalance,
		StartBalance:        m.StartBalance,
		StartCashBalance:    m.StartCashBalance,
		StartNonCashBalance: m.StartNonCashBalance,
		FlowsFactor:         m.FlowsFactor,
		AuditFields:         toDomainAuditFields(m.AuditFields),
	}
}
