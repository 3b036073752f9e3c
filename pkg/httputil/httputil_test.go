package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	ctx := context.Background()
	transient := errors.New("transient")
	fatal := errors.New("fatal")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"success", 0, nil, 1, nil},
		{"recovers", 2, Retryable(transient), 3, nil},
		{"exhausted", 5, Retryable(transient), 3, transient},
		{"not retryable", 5, fatal, 1, fatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(ctx, 3, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Hour, func() error { return Retryable(errors.New("x")) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetryableNil(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain error reported retryable")
	}
}

func TestGetJSON(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name":"feature"}`))
		case "/missing":
			http.Error(w, "no such workflow", http.StatusNotFound)
		case "/down":
			http.Error(w, "boom", http.StatusBadGateway)
		case "/garbage":
			_, _ = w.Write([]byte(`{`))
		}
	}))
	defer srv.Close()
	ctx := context.Background()

	var out struct{ Name string }
	if err := GetJSON(ctx, srv.Client(), srv.URL+"/ok", &out); err != nil || out.Name != "feature" {
		t.Errorf("GetJSON(ok) = %v, %+v", err, out)
	}

	err := GetJSON(ctx, srv.Client(), srv.URL+"/missing", &out)
	var serr *StatusError
	if !errors.As(err, &serr) || serr.Code != http.StatusNotFound || IsRetryable(err) {
		t.Errorf("GetJSON(missing) = %v", err)
	}

	if err := GetJSON(ctx, srv.Client(), srv.URL+"/down", &out); !IsRetryable(err) {
		t.Errorf("GetJSON(down) = %v, want retryable", err)
	}

	if err := GetJSON(ctx, srv.Client(), srv.URL+"/garbage", &out); err == nil || IsRetryable(err) {
		t.Errorf("GetJSON(garbage) = %v, want non-retryable decode error", err)
	}
}
