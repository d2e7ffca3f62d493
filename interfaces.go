package ratelimits

// HeaderSet is all the parser needs from a response: a way to walk header
// name/value pairs. Names are compared case-insensitively and only the first
// value seen for a name is used. The adapters package wraps net/http types
// and raw header text.
type HeaderSet interface {
	// Range calls fn for each pair until fn returns false.
	Range(fn func(name, value string) bool)
}
