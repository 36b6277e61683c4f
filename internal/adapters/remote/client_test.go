package remote_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"review_sentiment/internal/adapters/remote"
	"review_sentiment/internal/domain"
)

func TestClient_Open_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1:
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			_, _ = io.WriteString(w, "Id,Text\n1,hi\n")
		}
	}))
	defer ts.Close()

	cl := remote.New(100) // high RPS for tests
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	body, err := cl.Open(ctx, ts.URL+"/Reviews.csv")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	defer body.Close()
	b, _ := io.ReadAll(body)
	if string(b) != "Id,Text\n1,hi\n" {
		t.Fatalf("unexpected body: %q", b)
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected 3 calls due to retries, got %d", hits)
	}
}

func TestClient_Open_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl := remote.New(100)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := cl.Open(ctx, ts.URL)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_Open_Forbidden(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	_, err := remote.New(100).Open(context.Background(), ts.URL)
	if !errors.Is(err, remote.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestIsURL(t *testing.T) {
	for in, want := range map[string]bool{
		"Reviews.csv":              false,
		"/data/Reviews.csv":        false,
		"http://host/Reviews.csv":  true,
		"HTTPS://host/Reviews.csv": true,
	} {
		if got := remote.IsURL(in); got != want {
			t.Fatalf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}
