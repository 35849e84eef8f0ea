package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

type mockFallback struct {
	notifyFunc func(ctx context.Context, title, actionURL string) error
	calls      atomic.Int32
}

func (m *mockFallback) Notify(ctx context.Context, title, actionURL string) error {
	m.calls.Add(1)
	if m.notifyFunc != nil {
		return m.notifyFunc(ctx, title, actionURL)
	}
	return nil
}

var _ FallbackNotifier = (*mockFallback)(nil)

func TestRequestPermission(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   PermissionState
	}{
		{"gateway accepts", http.StatusOK, PermissionGranted},
		{"gateway unauthorized", http.StatusUnauthorized, PermissionDenied},
		{"gateway forbidden", http.StatusForbidden, PermissionDenied},
		{"gateway errors", http.StatusInternalServerError, PermissionDefault},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			d := NewDispatcher(srv.URL, "alerts", "", nil, zap.NewNop())
			got := d.RequestPermission(context.Background())
			if got != tt.want {
				t.Errorf("RequestPermission() = %q, want %q", got, tt.want)
			}
			if d.Permission() != tt.want {
				t.Errorf("Permission() = %q, want %q", d.Permission(), tt.want)
			}
		})
	}
}

func TestRequestPermissionUnreachableGateway(t *testing.T) {
	t.Parallel()
	d := NewDispatcher("http://127.0.0.1:1", "alerts", "", nil, zap.NewNop())
	if got := d.RequestPermission(context.Background()); got != PermissionDefault {
		t.Errorf("RequestPermission() = %q, want %q", got, PermissionDefault)
	}
}

func TestSendNoOpWithoutPermission(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL, "alerts", "", nil, zap.NewNop())
	d.setPermission(PermissionDenied)

	if err := d.Send(context.Background(), "Alimentar Lote A", "/tasks/execute?batchId=a"); err != nil {
		t.Errorf("Send with denied permission: %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("gateway was contacted %d times, want 0", hits.Load())
	}
}

func TestSendViaPushGateway(t *testing.T) {
	t.Parallel()
	var gotTitle, gotClick, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			return
		}
		gotPath = r.URL.Path
		gotClick = r.Header.Get("X-Click")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		gotTitle = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	fallback := &mockFallback{}
	d := NewDispatcher(srv.URL, "alerts", "", fallback, zap.NewNop())
	d.setPermission(PermissionGranted)

	err := d.Send(context.Background(), "Alimentar Lote A (G1) 🌾", "/tasks/execute?batchId=a&lockTask=feed&time=07:00")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/alerts" {
		t.Errorf("gateway path = %q, want /alerts", gotPath)
	}
	if gotTitle != "Alimentar Lote A (G1) 🌾" {
		t.Errorf("title = %q", gotTitle)
	}
	if gotClick != "/tasks/execute?batchId=a&lockTask=feed&time=07:00" {
		t.Errorf("X-Click = %q", gotClick)
	}
	if fallback.calls.Load() != 0 {
		t.Errorf("fallback used %d times, want 0", fallback.calls.Load())
	}
}

func TestSendFallsBackWhenGatewayFails(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	var gotTitle string
	fallback := &mockFallback{
		notifyFunc: func(_ context.Context, title, _ string) error {
			gotTitle = title
			return nil
		},
	}
	d := NewDispatcher(srv.URL, "alerts", "", fallback, zap.NewNop())
	d.setPermission(PermissionGranted)

	if err := d.Send(context.Background(), "Pesagem - Lote B 📋", "/tasks/execute?batchId=b"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if fallback.calls.Load() != 1 {
		t.Errorf("fallback used %d times, want 1", fallback.calls.Load())
	}
	if gotTitle != "Pesagem - Lote B 📋" {
		t.Errorf("fallback title = %q", gotTitle)
	}
}

func TestSendErrorsWhenBothChannelsFail(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	fallback := &mockFallback{
		notifyFunc: func(context.Context, string, string) error {
			return errors.New("redis down")
		},
	}
	d := NewDispatcher(srv.URL, "alerts", "", fallback, zap.NewNop())
	d.setPermission(PermissionGranted)

	if err := d.Send(context.Background(), "Alimentar", "/tasks"); err == nil {
		t.Error("expected error when both channels fail")
	}
}

func TestSoundCueFailureIsSwallowed(t *testing.T) {
	t.Parallel()
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	d := NewDispatcher(gateway.URL, "alerts", "http://127.0.0.1:1/cue", nil, zap.NewNop())
	d.setPermission(PermissionGranted)

	if err := d.Send(context.Background(), "Alimentar", "/tasks"); err != nil {
		t.Errorf("Send with broken sound cue: %v", err)
	}
}
