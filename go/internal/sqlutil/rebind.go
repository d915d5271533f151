package sqlutil

import (
	"strconv"
	"strings"
)

// Rebind rewrites ? placeholders to $n for postgres. Queries for other
// drivers are returned unchanged. Placeholders inside string literals are
// not supported.
func Rebind(driver, query string) string {
	if driver != "postgres" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
