package logger

import (
	"strings"
	"testing"
)

func TestSanitizeValue(t *testing.T) {
	cases := []struct {
		key  string
		val  interface{}
		want func(interface{}) bool
	}{
		{"jwt_secret_key", "s3cr3t", func(v interface{}) bool { return v == "[REDACTED]" }},
		{"authorization", "Bearer x", func(v interface{}) bool { return v == "[REDACTED]" }},
		{"database_dsn", "postgres://u:p@h/db", func(v interface{}) bool { return v == "[REDACTED]" }},
		{"user_id", "8d3c2b7e-0000-0000-0000-000000000000", func(v interface{}) bool {
			s, ok := v.(string)
			return ok && strings.HasPrefix(s, "hash:") && len(s) == len("hash:")+12
		}},
		{"kind", "practice", func(v interface{}) bool { return v == "practice" }},
		{"note", "aaaaaaaaaaaa.bbbbbbbbbbbb.cccc", func(v interface{}) bool { return v == "[REDACTED]" }},
	}
	for _, tc := range cases {
		if got := sanitizeValue(tc.key, tc.val); !tc.want(got) {
			t.Fatalf("sanitizeValue(%q, %v)=%v", tc.key, tc.val, got)
		}
	}
}

func TestHashValueIsStable(t *testing.T) {
	a := hashValue("learner-1")
	b := hashValue("learner-1")
	if a != b || a == hashValue("learner-2") {
		t.Fatalf("unexpected hashes: %q %q", a, b)
	}
	if hashValue(nil) != "" {
		t.Fatalf("expected empty hash for nil")
	}
}

func TestNopLogger(t *testing.T) {
	l := Nop().With("service", "test")
	l.Info("ignored", "user_id", "x")
	l.Sync()
}
