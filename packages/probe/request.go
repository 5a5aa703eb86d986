package probe

import (
	"net/url"
	"time"
)

const (
	// IdentifierTypeTicker is the only identifier type sent to resolve
	IdentifierTypeTicker = "TICKER"

	// KeywordQuery is appended to every keyword search URL
	KeywordQuery = "?Limit=10&LocalOnly=true"

	// BulkSearchThreshold is the list size above which a bulk search is cut
	// down to BulkSearchCap keywords: a list of 501 entries is sent as its
	// first 100.
	BulkSearchThreshold = 500
	BulkSearchCap       = 100

	// AssetClassStockFund is the only asset class requested by bulk search
	AssetClassStockFund = "Stock/Fund"
)

// Delay after every call, per sequence
const (
	ResolvePacing    = 50 * time.Millisecond
	KeywordPacing    = 500 * time.Millisecond
	BulkSearchPacing = 50 * time.Millisecond
)

// SecurityID identifies one security to resolve
type SecurityID struct {
	Type       string `json:"securityIdentifierType"`
	Identifier string `json:"securityIdentifier"`
}

// ResolveRequest is the body of a resolve call
type ResolveRequest struct {
	SecurityIDs []SecurityID `json:"securityIds"`
	LocalOnly   bool         `json:"localOnly"`
}

// Key returns the response key the service files results under,
// "{type}-{identifier}". It is case-sensitive.
func (r ResolveRequest) Key() string {
	if len(r.SecurityIDs) == 0 {
		return ""
	}
	first := r.SecurityIDs[0]
	return first.Type + "-" + first.Identifier
}

// BulkSearchRequest is the body of a bulk search call
type BulkSearchRequest struct {
	Keywords              []string `json:"keywords"`
	LocalOnly             bool     `json:"localOnly"`
	AssetClassesToInclude []string `json:"assetClassesToInclude"`
}

// BuildResolveRequest wraps one identifier as a ticker lookup
func BuildResolveRequest(identifier string) ResolveRequest {
	return ResolveRequest{
		SecurityIDs: []SecurityID{
			{Type: IdentifierTypeTicker, Identifier: identifier},
		},
		LocalOnly: true,
	}
}

// BuildKeywordURL appends identifier to baseURL as a path segment followed
// by the fixed keyword query. baseURL is expected to end with a slash.
func BuildKeywordURL(baseURL, identifier string) string {
	return baseURL + url.PathEscape(identifier) + KeywordQuery
}

// BuildBulkSearchRequest builds the bulk search body. Lists longer than
// BulkSearchThreshold are truncated to their first BulkSearchCap entries.
func BuildBulkSearchRequest(identifiers []string) BulkSearchRequest {
	keywords := identifiers
	if len(keywords) > BulkSearchThreshold {
		keywords = keywords[:BulkSearchCap]
	}

	return BulkSearchRequest{
		Keywords:              append([]string{}, keywords...),
		LocalOnly:             true,
		AssetClassesToInclude: []string{AssetClassStockFund},
	}
}
