package sphere

import (
	"net/url"
	"strings"

	"github.com/lox/vibesphere/internal/catalog"
)

// QueryParam is the URL query key that carries a selection.
const QueryParam = "s"

// DecodeIDs parses a comma-separated id list. Blank tokens are skipped;
// unknown and repeated ids are dropped and counted in dropped.
func DecodeIDs(index *catalog.Index, value string) (ids []string, dropped int) {
	seen := make(map[string]struct{})
	for _, tok := range strings.Split(value, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if _, dup := seen[tok]; dup || !index.Has(tok) {
			dropped++
			continue
		}
		seen[tok] = struct{}{}
		ids = append(ids, tok)
	}
	return ids, dropped
}

// EncodeIDs joins ids with commas.
func EncodeIDs(ids []string) string {
	return strings.Join(ids, ",")
}

// Encode returns the query value for sel.
func Encode(sel *Selection) string {
	return EncodeIDs(sel.ids)
}

// ApplyToQuery writes sel into values, removing the key when sel is empty.
func ApplyToQuery(values url.Values, sel *Selection) {
	if sel.Len() == 0 {
		values.Del(QueryParam)
		return
	}
	values.Set(QueryParam, Encode(sel))
}

// ShareURL returns base with its query rewritten to carry sel. Other query
// parameters on base are kept.
func ShareURL(base *url.URL, sel *Selection) string {
	u := *base
	q := u.Query()
	ApplyToQuery(q, sel)
	u.RawQuery = q.Encode()
	return u.String()
}
