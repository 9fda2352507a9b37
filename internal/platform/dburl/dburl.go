// Package dburl inspects and adjusts PostgreSQL connection strings in either
// URL (postgres://...) or key=value form.
package dburl

import (
	"net/url"
	"strings"
)

const binaryResultParam = "disable_prepared_binary_result"

// DisableBinaryResults sets disable_prepared_binary_result=yes unless the
// connection string already sets it, which keeps lib/pq usable behind
// transaction-pooling proxies.
func DisableBinaryResults(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}

	if isURL(raw) {
		u, err := url.Parse(raw)
		if err != nil {
			return raw
		}
		q := u.Query()
		if q.Has(binaryResultParam) {
			return raw
		}
		q.Set(binaryResultParam, "yes")
		u.RawQuery = q.Encode()
		return u.String()
	}

	if _, ok := lookup(raw, binaryResultParam); ok {
		return raw
	}
	return raw + " " + binaryResultParam + "=yes"
}

// Name returns the database name, or "" when the string does not name one.
func Name(raw string) string {
	raw = strings.TrimSpace(raw)
	if isURL(raw) {
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		return strings.Trim(u.Path, "/ ")
	}
	name, _ := lookup(raw, "dbname")
	return name
}

func isURL(raw string) bool {
	return strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://")
}

func lookup(kv, key string) (string, bool) {
	for _, field := range strings.Fields(kv) {
		k, v, ok := strings.Cut(field, "=")
		if ok && k == key {
			return strings.Trim(v, `"'`), true
		}
	}
	return "", false
}
