package domain

// AccountClassification distinguishes assets from liabilities.
type AccountClassification string

const (
	ClassificationAsset     AccountClassification = "ASSET"
	ClassificationLiability AccountClassification = "LIABILITY"
)

// Account represents a tracked financial account denominated in a single
// currency. Raw per-day balance computation happens upstream; the core only
// consumes the persisted snapshots.
type Account struct {
	AccountID      string                `json:"accountID"` // Primary Key (UUID)
	Name           string                `json:"name"`
	CurrencyCode   string                `json:"currencyCode"` // FK -> Currency.currencyCode
	Classification AccountClassification `json:"classification"`
	AuditFields
}

// FlowsFactor returns +1 for asset accounts and -1 for liabilities, the
// multiplier applied when aggregating balances into a net series.
func (a Account) FlowsFactor() int {
	if a.Classification == ClassificationLiability {
		return -1
	}
	return 1
}
