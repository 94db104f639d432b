package observability

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestParseHeaders(t *testing.T) {
	t.Parallel()
	cases := []struct {
		raw  string
		want map[string]string
	}{
		{"", nil},
		{"a=1", map[string]string{"a": "1"}},
		{" a = 1 , b=2=3, junk, c= ", map[string]string{"a": "1", "b": "2=3"}},
	}
	for _, tc := range cases {
		if got := parseHeaders(tc.raw); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("parseHeaders(%q): got=%v want=%v", tc.raw, got, tc.want)
		}
	}
}

func TestSampleRatio(t *testing.T) {
	t.Parallel()
	for in, want := range map[float64]float64{0: 0.1, -1: 0.1, 0.5: 0.5, 3: 1} {
		if got := sampleRatio(in); got != want {
			t.Fatalf("sampleRatio(%v): got=%v want=%v", in, got, want)
		}
	}
}

func TestNilMetricsAreNoop(t *testing.T) {
	t.Parallel()
	var m *Metrics
	m.ApiInflightInc()
	m.ObserveAPI("GET", "/x", 200, time.Millisecond)
	m.ObserveAttempt("practice", 2, 0.5)
	m.IncEligibility("eligible")
	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil || buf.Len() != 0 {
		t.Fatalf("nil metrics wrote %q, %v", buf.String(), err)
	}
}

func TestMetricsExposition(t *testing.T) {
	t.Parallel()
	m := newMetrics()
	m.ObserveAttempt("practice", 3, 0.75)
	m.ObserveAttempt("practice", 3, 0.72)
	m.IncAttemptRejected("progress", "progress_not_eligible")
	m.AddRecommendationRefresh("sweep", 4)
	m.ApiInflightInc()
	m.ApiInflightDec()

	if got := m.attemptsGraded.Value("practice", "3"); got != 2 {
		t.Fatalf("attempts graded: got=%v want=2", got)
	}

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`toeic_attempts_graded_total{kind="practice",level="3"} 2`,
		`toeic_attempt_accuracy_bucket{kind="practice",le="0.7"} 0`,
		`toeic_attempt_accuracy_bucket{kind="practice",le="0.85"} 2`,
		`toeic_attempt_accuracy_count{kind="practice"} 2`,
		`toeic_attempts_rejected_total{kind="progress",code="progress_not_eligible"} 1`,
		`toeic_recommendation_refresh_total{trigger="sweep"} 4`,
		`toeic_api_inflight_requests 0`,
		`# TYPE toeic_api_request_duration_seconds histogram`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q\n%s", want, out)
		}
	}
}
