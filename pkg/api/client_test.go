package api

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/uploads/front.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("PNGDATA"))
	})
	mux.HandleFunc("/uploads/huge.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchImage(t *testing.T) {
	srv := newImageServer(t)
	c := NewClient(srv.URL+"/", time.Second, 32, zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name string
		ref  string
	}{
		{"root relative", "/uploads/front.png"},
		{"relative without slash", "uploads/front.png"},
		{"absolute", srv.URL + "/uploads/front.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := c.FetchImage(ctx, tt.ref)
			if err != nil {
				t.Fatalf("FetchImage: %v", err)
			}
			if string(data) != "PNGDATA" {
				t.Errorf("data = %q", data)
			}
		})
	}
}

func TestFetchImageErrors(t *testing.T) {
	srv := newImageServer(t)
	c := NewClient(srv.URL, time.Second, 32, zap.NewNop())
	ctx := context.Background()

	if _, err := c.FetchImage(ctx, "/uploads/missing.png"); err == nil {
		t.Error("expected error for 404")
	}
	if _, err := c.FetchImage(ctx, "/uploads/huge.png"); !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("err = %v, want ErrImageTooLarge", err)
	}
	if _, err := c.FetchImage(ctx, "ftp://example.com/a.png"); err == nil {
		t.Error("expected error for unsupported scheme")
	}

	noBase := NewClient("", time.Second, 0, zap.NewNop())
	if _, err := noBase.FetchImage(ctx, "/uploads/front.png"); err == nil {
		t.Error("expected error for relative reference without base URL")
	}
}

func TestFetchImageDataURI(t *testing.T) {
	c := NewClient("", time.Second, 32, zap.NewNop())
	ctx := context.Background()

	encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("PNGDATA"))
	data, err := c.FetchImage(ctx, encoded)
	if err != nil {
		t.Fatalf("FetchImage: %v", err)
	}
	if string(data) != "PNGDATA" {
		t.Errorf("data = %q", data)
	}

	data, err = c.FetchImage(ctx, "data:image/svg+xml,%3Csvg%2F%3E")
	if err != nil {
		t.Fatalf("FetchImage plain: %v", err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("data = %q", data)
	}

	if _, err := c.FetchImage(ctx, "data:image/png;base64"); err == nil {
		t.Error("expected error for data URI without payload")
	}
	if _, err := c.FetchImage(ctx, "data:image/png;base64,!!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
}
