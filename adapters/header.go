package adapters

import (
	"net/http"
	"sort"

	"github.com/opengovern/ratelimits"
)

// HTTPHeader adapts http.Header to ratelimits.HeaderSet. Only the first value
// of a multi-valued header is visited.
type HTTPHeader http.Header

// Range implements ratelimits.HeaderSet. Keys are visited in sorted order.
func (h HTTPHeader) Range(fn func(name, value string) bool) {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		vals := h[k]
		if len(vals) == 0 {
			continue
		}
		if !fn(k, vals[0]) {
			return
		}
	}
}

// Response returns the header set of resp. A nil response has no headers.
func Response(resp *http.Response) ratelimits.HeaderSet {
	if resp == nil {
		return ratelimits.Map(nil)
	}
	return HTTPHeader(resp.Header)
}
