package sqlutil

import "testing"

func TestRebind(t *testing.T) {
	tests := []struct {
		driver string
		query  string
		want   string
	}{
		{"sqlite3", "SELECT * FROM players WHERE id = ?", "SELECT * FROM players WHERE id = ?"},
		{"postgres", "SELECT * FROM players WHERE id = ?", "SELECT * FROM players WHERE id = $1"},
		{"postgres", "INSERT INTO t (a, b, c) VALUES (?, ?, ?)", "INSERT INTO t (a, b, c) VALUES ($1, $2, $3)"},
		{"postgres", "SELECT 1", "SELECT 1"},
	}
	for _, tt := range tests {
		if got := Rebind(tt.driver, tt.query); got != tt.want {
			t.Fatalf("Rebind(%s, %q) = %q, want %q", tt.driver, tt.query, got, tt.want)
		}
	}
}
