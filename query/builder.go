package query

// Builder is the common surface of every query builder.
type Builder interface {
	Build() (Query, error)
	QueryType() string
}

// builder carries the optional auth method shared by all builders. B is the
// concrete builder type so fluent setters keep returning it.
type builder[B any] struct {
	self       B
	auth       AuthMethod
	queryType  string
	buildQuery func() (Query, error)
}

func newBuilder[B any](self B, queryType string, buildQuery func() (Query, error)) *builder[B] {
	return &builder[B]{self: self, queryType: queryType, buildQuery: buildQuery}
}

// WithAuth sets the auth method applied by Build.
func (b *builder[B]) WithAuth(auth AuthMethod) B {
	b.auth = auth
	return b.self
}

// Auth returns the configured auth method, or nil.
func (b *builder[B]) Auth() AuthMethod {
	return b.auth
}

// QueryType returns the diagnostic label of the builder.
func (b *builder[B]) QueryType() string {
	return b.queryType
}

// Build constructs the base query and wraps it with the auth method, if any.
// Each call constructs a fresh payload.
func (b *builder[B]) Build() (Query, error) {
	base, err := b.buildQuery()
	if err != nil {
		return nil, err
	}
	if b.auth == nil {
		return base, nil
	}
	return b.auth.Wrap(base)
}

// addressBuilder adds a required address to a builder.
type addressBuilder[B any] struct {
	*builder[B]
	address string
}

// ForAddress sets the address the query is scoped to.
func (b *addressBuilder[B]) ForAddress(address string) B {
	b.address = address
	return b.self
}

// Address returns the configured address.
func (b *addressBuilder[B]) Address() string {
	return b.address
}

func (b *addressBuilder[B]) validateAddress() error {
	if b.address == "" {
		return &BuilderError{QueryType: b.queryType, Field: "address"}
	}
	return nil
}

// SimpleQuery is a parameterless query of the form {<variant>: {}}.
type SimpleQuery struct {
	*builder[*SimpleQuery]
	variant string
}

func newSimpleQuery(variant, queryType string) *SimpleQuery {
	q := &SimpleQuery{variant: variant}
	q.builder = newBuilder(q, queryType, q.buildQuery)
	return q
}

func (q *SimpleQuery) buildQuery() (Query, error) {
	return Query{q.variant: map[string]any{}}, nil
}

// NewBalanceQuery builds {balance: {}}. The queried address is implied by the
// permit signature or injected by a viewing key, so none is set here.
func NewBalanceQuery() *SimpleQuery { return newSimpleQuery("balance", "token_balance") }

// NewTokenInfoQuery builds {token_info: {}}.
func NewTokenInfoQuery() *SimpleQuery { return newSimpleQuery("token_info", "token_info") }

// NewTokenConfigQuery builds {token_config: {}}.
func NewTokenConfigQuery() *SimpleQuery { return newSimpleQuery("token_config", "token_config") }

// NewExchangeRateQuery builds {exchange_rate: {}}.
func NewExchangeRateQuery() *SimpleQuery { return newSimpleQuery("exchange_rate", "exchange_rate") }

// NewMintersQuery builds {minters: {}}.
func NewMintersQuery() *SimpleQuery { return newSimpleQuery("minters", "minters") }

// NewContractInfoQuery builds the SNIP-721 {contract_info: {}}.
func NewContractInfoQuery() *SimpleQuery { return newSimpleQuery("contract_info", "nft_contract_info") }

// NewNumTokensQuery builds the SNIP-721 {num_tokens: {}}.
func NewNumTokensQuery() *SimpleQuery { return newSimpleQuery("num_tokens", "nft_num_tokens") }
