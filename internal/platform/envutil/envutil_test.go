package envutil

import (
	"reflect"
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("ENVUTIL_INT", "42")
	t.Setenv("ENVUTIL_BAD_INT", "x")
	t.Setenv("ENVUTIL_BOOL", "true")
	t.Setenv("ENVUTIL_DUR", "15m")
	t.Setenv("ENVUTIL_SECS", "90")
	t.Setenv("ENVUTIL_LIST", " a, ,b ")
	t.Setenv("ENVUTIL_FLOAT", "0.25")

	if got := Int("ENVUTIL_INT", 1); got != 42 {
		t.Fatalf("Int=%d", got)
	}
	if got := Int("ENVUTIL_BAD_INT", 7); got != 7 {
		t.Fatalf("Int fallback=%d", got)
	}
	if got := Bool("ENVUTIL_BOOL", false); !got {
		t.Fatalf("Bool=false")
	}
	if got := Duration("ENVUTIL_DUR", 0); got != 15*time.Minute {
		t.Fatalf("Duration=%v", got)
	}
	if got := Duration("ENVUTIL_SECS", 0); got != 90*time.Second {
		t.Fatalf("Duration secs=%v", got)
	}
	if got := String("ENVUTIL_MISSING", "def"); got != "def" {
		t.Fatalf("String=%q", got)
	}
	if got := Float("ENVUTIL_FLOAT", 1); got != 0.25 {
		t.Fatalf("Float=%v", got)
	}
	if got := List("ENVUTIL_LIST", nil); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("List=%v", got)
	}
}
