package query

// LegacyBalanceQuery builds {balance: {address}} for viewing-key callers that
// supply the address explicitly.
type LegacyBalanceQuery struct {
	*addressBuilder[*LegacyBalanceQuery]
}

// NewLegacyBalanceQuery returns an empty LegacyBalanceQuery.
func NewLegacyBalanceQuery() *LegacyBalanceQuery {
	q := &LegacyBalanceQuery{}
	q.addressBuilder = &addressBuilder[*LegacyBalanceQuery]{
		builder: newBuilder(q, "legacy_token_balance", q.buildQuery),
	}
	return q
}

func (q *LegacyBalanceQuery) buildQuery() (Query, error) {
	if err := q.validateAddress(); err != nil {
		return nil, err
	}
	return Query{"balance": map[string]any{"address": q.address}}, nil
}

// AllowanceQuery builds {allowance: {owner, spender}}.
type AllowanceQuery struct {
	*builder[*AllowanceQuery]
	owner   string
	spender string
}

// NewAllowanceQuery returns an AllowanceQuery with neither party set.
func NewAllowanceQuery() *AllowanceQuery {
	q := &AllowanceQuery{}
	q.builder = newBuilder(q, "allowance", q.buildQuery)
	return q
}

// AllowanceBetween returns an AllowanceQuery for owner and spender.
func AllowanceBetween(owner, spender string) *AllowanceQuery {
	return NewAllowanceQuery().Between(owner, spender)
}

// ForOwner sets the token owner.
func (q *AllowanceQuery) ForOwner(owner string) *AllowanceQuery {
	q.owner = owner
	return q
}

// ForSpender sets the approved spender.
func (q *AllowanceQuery) ForSpender(spender string) *AllowanceQuery {
	q.spender = spender
	return q
}

// Between sets owner and spender together.
func (q *AllowanceQuery) Between(owner, spender string) *AllowanceQuery {
	return q.ForOwner(owner).ForSpender(spender)
}

func (q *AllowanceQuery) buildQuery() (Query, error) {
	if q.owner == "" {
		return nil, &BuilderError{QueryType: q.queryType, Field: "owner"}
	}
	if q.spender == "" {
		return nil, &BuilderError{QueryType: q.queryType, Field: "spender"}
	}
	return Query{"allowance": map[string]any{
		"owner":   q.owner,
		"spender": q.spender,
	}}, nil
}

// HistoryQuery builds SNIP-20 transfer_history or transaction_history queries.
// The address is required for viewing-key use; with a permit it is ignored by
// the contract but still sent.
type HistoryQuery struct {
	*addressBuilder[*HistoryQuery]
	variant  string
	page     *int
	pageSize int
}

// DefaultHistoryPageSize is the page size used when none is set.
const DefaultHistoryPageSize = 10

func newHistoryQuery(variant string) *HistoryQuery {
	q := &HistoryQuery{variant: variant, pageSize: DefaultHistoryPageSize}
	q.addressBuilder = &addressBuilder[*HistoryQuery]{
		builder: newBuilder(q, variant, q.buildQuery),
	}
	return q
}

// NewTransferHistoryQuery returns a transfer_history builder.
func NewTransferHistoryQuery() *HistoryQuery { return newHistoryQuery("transfer_history") }

// NewTransactionHistoryQuery returns a transaction_history builder.
func NewTransactionHistoryQuery() *HistoryQuery { return newHistoryQuery("transaction_history") }

// WithPage sets the zero-based page number.
func (q *HistoryQuery) WithPage(page int) *HistoryQuery {
	q.page = &page
	return q
}

// WithPageSize sets the number of entries per page.
func (q *HistoryQuery) WithPageSize(size int) *HistoryQuery {
	q.pageSize = size
	return q
}

func (q *HistoryQuery) buildQuery() (Query, error) {
	if err := q.validateAddress(); err != nil {
		return nil, err
	}
	if q.pageSize <= 0 {
		return nil, &BuilderError{QueryType: q.queryType, Field: "page_size"}
	}
	body := map[string]any{
		"address":   q.address,
		"page_size": q.pageSize,
	}
	if q.page != nil {
		body["page"] = *q.page
	}
	return Query{q.variant: body}, nil
}
