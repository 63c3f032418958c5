package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultConfig(server.URL)
	if token != "" {
		cfg.TokenSource = StaticToken(token)
	}
	// Keep retry waits short in tests
	cfg.Retry = RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    5 * time.Millisecond,
		MaxBackoff:        20 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New accepted empty base URL")
	}
}

func TestClient_ListPosts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/posts" {
			t.Errorf("path = %q, want /api/posts", r.URL.Path)
		}
		if got := r.URL.Query().Get("sort"); got != "hot" {
			t.Errorf("sort = %q, want hot", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"data": {
				"posts": [{"id": "p1", "title": "First"}, {"id": "p2", "title": "Second"}],
				"pagination": {"current_page": 1, "total_pages": 5, "total_count": 100}
			}
		}`))
	}, "")

	page, err := client.ListPosts(context.Background(), 1, 20, "hot")
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(page.Posts) != 2 {
		t.Errorf("got %d posts, want 2", len(page.Posts))
	}
	if page.Pagination.TotalPages != 5 {
		t.Errorf("total_pages = %d, want 5", page.Pagination.TotalPages)
	}
}

func TestClient_BusinessError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "message": "category not found"}`))
	}, "")

	_, err := client.CategoryProducts(context.Background(), "42", 1, 20, "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Class != ErrorClassClient {
		t.Errorf("class = %q, want %q", apiErr.Class, ErrorClassClient)
	}
	if apiErr.UserMessage() != "category not found" {
		t.Errorf("UserMessage() = %q, want server message", apiErr.UserMessage())
	}
}

func TestClient_HTTPErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   ErrorClass
	}{
		{name: "not found", status: 404, want: ErrorClassClient},
		{name: "rate limited", status: 429, want: ErrorClassRateLimit},
		{name: "server error", status: 500, want: ErrorClassServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}, "")

			_, err := client.ListPosts(context.Background(), 1, 20, "")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Class != tt.want {
				t.Errorf("class = %q, want %q", apiErr.Class, tt.want)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", apiErr.StatusCode, tt.status)
			}
		})
	}
}

func TestClient_React_RequiresToken(t *testing.T) {
	requests := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
	}, "")

	_, err := client.React(context.Background(), "42", ReactionLike)
	if !errors.Is(err, ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}
	if requests != 0 {
		t.Errorf("request was sent despite missing token")
	}
}

func TestClient_React(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if r.URL.Path != "/api/posts/42/reaction" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"status": "success", "data": {"action": "added"}}`))
	}, "token-123")

	result, err := client.React(context.Background(), "42", ReactionLike)
	if err != nil {
		t.Fatalf("React failed: %v", err)
	}
	if result.Action != ReactionAdded {
		t.Errorf("action = %q, want %q", result.Action, ReactionAdded)
	}
}

func TestClient_SendChatMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"status": "success",
			"data": {
				"reply": "Here are some laptops",
				"products": [{"id": "pr1", "name": "Laptop A"}],
				"allProducts": [
					{"id": "pr1", "name": "Laptop A"},
					{"id": "pr2", "name": "Laptop B"},
					{"id": "pr3", "name": "Laptop C"},
					{"id": "pr4", "name": "Laptop D"}
				],
				"hasMore": true
			}
		}`))
	}, "")

	reply, err := client.SendChatMessage(context.Background(), "show me laptops", "session-1", nil)
	if err != nil {
		t.Fatalf("SendChatMessage failed: %v", err)
	}
	if len(reply.AllProducts) != 4 {
		t.Errorf("got %d products, want 4", len(reply.AllProducts))
	}
	if !reply.HasMore {
		t.Error("hasMore = false, want true")
	}
}

func TestClient_GetUploadAuth_RetriesOn429(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"status": "success", "data": {"token": "t", "signature": "s", "expire": 1}}`))
	}, "")

	auth, err := client.GetUploadAuth(context.Background())
	if err != nil {
		t.Fatalf("GetUploadAuth failed: %v", err)
	}
	if auth.Token != "t" {
		t.Errorf("token = %q, want %q", auth.Token, "t")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestClient_GetUploadAuth_NoRetryOnClientError(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}, "")

	_, err := client.GetUploadAuth(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (client errors are not retried)", attempts)
	}
}

func TestMetricEndpoint(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/api/posts", want: "/api/posts"},
		{path: "/api/posts/42/reaction", want: "/api/posts/:id/reaction"},
		{path: "/api/public/categories/9/products", want: "/api/public/categories/:id/products"},
		{path: "/api/admin/products/77", want: "/api/admin/products/:id"},
	}

	for _, tt := range tests {
		if got := metricEndpoint(tt.path); got != tt.want {
			t.Errorf("metricEndpoint(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
