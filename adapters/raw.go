package adapters

import (
	"bufio"
	"strings"

	"github.com/pkg/errors"

	"github.com/opengovern/ratelimits"
)

// ParseRaw reads a header block as printed by curl -i or copied from browser
// devtools: one "Name: value" pair per line. Blank lines and HTTP status
// lines are skipped. Names repeat case-insensitively; the first one wins.
func ParseRaw(raw string) (ratelimits.Map, error) {
	headers := make(ratelimits.Map)
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(strings.NewReader(raw))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "HTTP/") {
			continue
		}

		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.Errorf("line %d: expected \"Name: value\", got %q", lineNo, line)
		}

		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		headers[name] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read headers")
	}
	return headers, nil
}
