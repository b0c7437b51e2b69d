package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cortexhq/cortex/internal/domain"
)

// fakeTokens implements TokenSource for tests
type fakeTokens struct {
	token       string
	invalidated bool
}

func (f *fakeTokens) Token() string { return f.token }
func (f *fakeTokens) Invalidate()   { f.invalidated = true; f.token = "" }

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		json.NewEncoder(w).Encode(domain.User{ID: "u1", Email: "a@b.c"})
	}))
	defer server.Close()

	client := NewClient(server.URL, &fakeTokens{token: "tok-123"})
	user, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("user.ID = %q, want u1", user.ID)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestClient_NoAuthHeaderWithoutCredential(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(TokenResponse{AccessToken: "fresh"})
	}))
	defer server.Close()

	client := NewClient(server.URL, &fakeTokens{})
	token, err := client.Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token.AccessToken != "fresh" {
		t.Errorf("AccessToken = %q, want fresh", token.AccessToken)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty", gotAuth)
	}
}

func TestClient_UnauthorizedInvalidatescredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"})
	}))
	defer server.Close()

	tokens := &fakeTokens{token: "stale"}
	client := NewClient(server.URL, tokens)

	_, err := client.Me(context.Background())
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Me() error = %v, want ErrUnauthorized", err)
	}
	if !tokens.invalidated {
		t.Error("401 must invalidate the stored credential")
	}
}

func TestClient_ServerDetailSurfacedVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooEarly)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Retry after cooldown"})
	}))
	defer server.Close()

	client := NewClient(server.URL, &fakeTokens{token: "tok"})

	err := client.RequestFeedback(context.Background(), "r1")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("RequestFeedback() error = %v, want *Error", err)
	}
	if apiErr.Detail != "Retry after cooldown" {
		t.Errorf("Detail = %q, want server text verbatim", apiErr.Detail)
	}
	if apiErr.Error() != "Retry after cooldown" {
		t.Errorf("Error() = %q, want detail verbatim", apiErr.Error())
	}
}

func TestClient_GetTaskNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, &fakeTokens{token: "tok"})
	_, err := client.GetTask(context.Background(), "missing")
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("GetTask() error = %v, want ErrTaskNotFound", err)
	}
}

func TestClient_ListTasksFilters(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]domain.Task{{ID: "t1"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, &fakeTokens{token: "tok"})
	tasks, err := client.ListTasks(context.Background(), "Backend Engineer", "advanced")
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("len(tasks) = %d, want 1", len(tasks))
	}
	if gotQuery != "difficulty=advanced&role=Backend+Engineer" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestClient_CreateResponseBody(t *testing.T) {
	var got CreateResponseRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/responses" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(domain.TaskResponse{ID: "resp-1", TaskID: got.TaskID})
	}))
	defer server.Close()

	client := NewClient(server.URL, &fakeTokens{token: "tok"})
	resp, err := client.CreateResponse(context.Background(), CreateResponseRequest{
		TaskID:       "t1",
		Assumptions:  "Use a single Postgres instance",
		Architecture: "graph TD\n  A --> B",
	})
	if err != nil {
		t.Fatalf("CreateResponse() error = %v", err)
	}
	if resp.ID != "resp-1" {
		t.Errorf("resp.ID = %q, want resp-1", resp.ID)
	}
	if got.Assumptions != "Use a single Postgres instance" {
		t.Errorf("Assumptions = %q, want text preserved", got.Assumptions)
	}
	if got.TradeOffs != "" {
		t.Errorf("TradeOffs = %q, want empty", got.TradeOffs)
	}
}

func TestError_Retryable(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusBadRequest, false},
		{http.StatusTooEarly, false},
		{http.StatusNotFound, false},
	}

	for _, tt := range tests {
		e := &Error{Status: tt.status}
		if got := e.Retryable(); got != tt.want {
			t.Errorf("Retryable() for %d = %v, want %v", tt.status, got, tt.want)
		}
	}
}
