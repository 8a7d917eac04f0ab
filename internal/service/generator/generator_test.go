package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vibelearner/internal/config"
)

func newTestClient(url string) *HTTPClient {
	return NewHTTPClient(&config.GeneratorConfig{
		URL:     url,
		Timeout: 5 * time.Second,
	})
}

func TestGenerate_Success(t *testing.T) {
	var received GenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(GenerateResponse{Success: true, CourseID: "abc123"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	resp, err := client.Generate(context.Background(), "user-1", "Intro to X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !resp.Success || resp.CourseID != "abc123" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if received.UserID != "user-1" || received.Topic != "Intro to X" {
		t.Errorf("unexpected wire payload: %+v", received)
	}
}

func TestGenerate_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "generation backend down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	if _, err := client.Generate(context.Background(), "user-1", "Intro to X"); err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

func TestGenerate_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	if _, err := client.Generate(context.Background(), "user-1", "Intro to X"); err == nil {
		t.Fatal("expected error for malformed response body")
	}
}

func TestGenerate_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Generate(ctx, "user-1", "Intro to X"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
