package postgres

import (
	"net/url"
	"strings"
)

const binaryParametersKey = "binary_parameters"

// ConnectionString prepares DB_URL for lib/pq. Both URL and keyword/value forms are
// accepted. With binaryParameters set, lib/pq sends arguments in binary and skips
// named prepared statements, so the ledger keeps working behind transaction poolers.
// An explicit binary_parameters setting in raw always wins.
func ConnectionString(raw string, binaryParameters bool) string {
	raw = strings.TrimSpace(raw)
	if !binaryParameters || raw == "" {
		return raw
	}

	if parsed, ok := parseURL(raw); ok {
		query := parsed.Query()
		if query.Get(binaryParametersKey) != "" {
			return raw
		}
		query.Set(binaryParametersKey, "yes")
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}

	if _, ok := keywordValue(raw, binaryParametersKey); ok {
		return raw
	}
	return raw + " " + binaryParametersKey + "=yes"
}

// DatabaseName returns the database a connection string points at, or "".
func DatabaseName(raw string) string {
	raw = strings.TrimSpace(raw)
	if parsed, ok := parseURL(raw); ok {
		return strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
	}
	name, _ := keywordValue(raw, "dbname")
	return name
}

func parseURL(raw string) (*url.URL, bool) {
	if !strings.HasPrefix(raw, "postgres://") && !strings.HasPrefix(raw, "postgresql://") {
		return nil, false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	return parsed, true
}

func keywordValue(raw, key string) (string, bool) {
	for _, token := range strings.Fields(raw) {
		k, v, found := strings.Cut(token, "=")
		if !found || k != key {
			continue
		}
		return strings.Trim(v, `"'`), true
	}
	return "", false
}
