package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewTimeWindow(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for h := MinWindowHours; h <= MaxWindowHours; h++ {
		w := NewTimeWindow(now, h)
		if !w.Until.Equal(now) {
			t.Fatalf("hours=%d: until = %v, want %v", h, w.Until, now)
		}
		if want := now.Add(-time.Duration(h) * time.Hour); !w.Since.Equal(want) {
			t.Fatalf("hours=%d: since = %v, want %v", h, w.Since, want)
		}
	}

	if w := NewTimeWindow(now, 0); w.Until.Sub(w.Since) != time.Hour {
		t.Errorf("expected hours clamped up to 1, got %v", w.Until.Sub(w.Since))
	}
	if w := NewTimeWindow(now, 500); w.Until.Sub(w.Since) != 168*time.Hour {
		t.Errorf("expected hours clamped down to 168, got %v", w.Until.Sub(w.Since))
	}
}

func TestNewLogQuery_ClampsPageSize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{in: -5, want: 1},
		{in: 0, want: 1},
		{in: 1, want: 1},
		{in: 250, want: 250},
		{in: 1000, want: 1000},
		{in: 1001, want: 1000},
	}
	for _, tt := range tests {
		q := NewLogQuery("grp", "res", time.Time{}, time.Time{}, tt.in, "")
		if q.PageSize != tt.want {
			t.Errorf("NewLogQuery(pageSize=%d).PageSize = %d, want %d", tt.in, q.PageSize, tt.want)
		}
	}
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("cause")

	if !errors.Is(&AuthConfigError{Source: "x", Err: cause}, cause) {
		t.Error("AuthConfigError should unwrap to its cause")
	}
	if !errors.Is(&AuthUnavailableError{Err: cause}, cause) {
		t.Error("AuthUnavailableError should unwrap to its cause")
	}
	if !errors.Is(&BackendError{Op: "read", Err: cause}, cause) {
		t.Error("BackendError should unwrap to its cause")
	}

	got := (&BackendError{Op: "read", Code: "Unavailable", Err: cause}).Error()
	if got != "log backend read failed (Unavailable): cause" {
		t.Errorf("unexpected BackendError message %q", got)
	}
}
