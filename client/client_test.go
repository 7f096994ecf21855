package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_AttachesBearerTokenAndRequestID(t *testing.T) {
	var gotAuth, gotReqID string
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-Id")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer hs.Close()

	c := New(hs.URL, WithTokenSource(func() string { return "tok-123" }))
	if _, err := c.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("unexpected Authorization header %q", gotAuth)
	}
	if gotReqID == "" {
		t.Fatal("expected X-Request-Id header to be set")
	}
}

func TestClient_NoTokenMeansNoAuthHeader(t *testing.T) {
	var sawAuth bool
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"access_token":"abc"}`))
	}))
	defer hs.Close()

	c := New(hs.URL)
	if _, err := c.Login(context.Background(), Credentials{Email: "a@b.com", Password: "pw"}); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if sawAuth {
		t.Fatal("expected no Authorization header without a token source")
	}
}

func TestClient_Unauthorized(t *testing.T) {
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer hs.Close()

	c := New(hs.URL)
	_, err := c.ListTasks(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized classification, got %v", err)
	}
}

func TestClient_APIErrorCarriesDetail(t *testing.T) {
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"title too long"}`))
	}))
	defer hs.Close()

	c := New(hs.URL)
	_, err := c.CreateTask(context.Background(), CreateTaskRequest{Title: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if IsUnauthorized(err) {
		t.Fatalf("400 must not classify as unauthorized: %v", err)
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Detail != "title too long" || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("unexpected APIError %+v", apiErr)
	}
}

func TestClient_TimeoutSurfacesAsError(t *testing.T) {
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer hs.Close()

	c := New(hs.URL, WithTimeout(20*time.Millisecond))
	if _, err := c.ListTasks(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestClient_CancelledContext(t *testing.T) {
	c := New("http://localhost:0")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.ListTasks(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
