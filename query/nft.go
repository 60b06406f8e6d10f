package query

// DefaultNFTLimit is the page size used by NFTOwnershipQuery when none is set.
const DefaultNFTLimit = 100

// NFTOwnershipQuery builds the SNIP-721 {tokens: {owner, limit[, start_after]}}.
type NFTOwnershipQuery struct {
	*addressBuilder[*NFTOwnershipQuery]
	limit      int
	startAfter string
}

// NewNFTOwnershipQuery returns a builder with the default limit and no owner.
func NewNFTOwnershipQuery() *NFTOwnershipQuery {
	q := &NFTOwnershipQuery{limit: DefaultNFTLimit}
	q.addressBuilder = &addressBuilder[*NFTOwnershipQuery]{
		builder: newBuilder(q, "nft_ownership", q.buildQuery),
	}
	return q
}

// NFTOwnershipFor returns a builder scoped to owner.
func NFTOwnershipFor(owner string) *NFTOwnershipQuery {
	return NewNFTOwnershipQuery().ForOwner(owner)
}

// ForOwner sets the owner whose tokens are listed.
func (q *NFTOwnershipQuery) ForOwner(owner string) *NFTOwnershipQuery {
	return q.ForAddress(owner)
}

// WithLimit sets the maximum number of token ids returned.
func (q *NFTOwnershipQuery) WithLimit(limit int) *NFTOwnershipQuery {
	q.limit = limit
	return q
}

// StartAfter sets the pagination cursor.
func (q *NFTOwnershipQuery) StartAfter(tokenID string) *NFTOwnershipQuery {
	q.startAfter = tokenID
	return q
}

func (q *NFTOwnershipQuery) buildQuery() (Query, error) {
	if q.address == "" {
		return nil, &BuilderError{QueryType: q.queryType, Field: "owner"}
	}
	if q.limit <= 0 {
		return nil, &BuilderError{QueryType: q.queryType, Field: "limit"}
	}
	body := map[string]any{
		"owner": q.address,
		"limit": q.limit,
	}
	if q.startAfter != "" {
		body["start_after"] = q.startAfter
	}
	return Query{"tokens": body}, nil
}

// NFTInfoQuery builds the public SNIP-721 {nft_info: {token_id}}.
type NFTInfoQuery struct {
	*builder[*NFTInfoQuery]
	tokenID string
}

// NewNFTInfoQuery returns a builder for tokenID.
func NewNFTInfoQuery(tokenID string) *NFTInfoQuery {
	q := &NFTInfoQuery{tokenID: tokenID}
	q.builder = newBuilder(q, "nft_info", q.buildQuery)
	return q
}

func (q *NFTInfoQuery) buildQuery() (Query, error) {
	if q.tokenID == "" {
		return nil, &BuilderError{QueryType: q.queryType, Field: "token_id"}
	}
	return Query{"nft_info": map[string]any{"token_id": q.tokenID}}, nil
}
