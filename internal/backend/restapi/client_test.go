package restapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"taskview/internal/service"
	"taskview/internal/task"
)

const sampleTask = `{"id":3,"title":"New","description":null,"due_date":null,"completed":false,"created_at":"2024-05-01T10:00:00Z"}`

// newTestClient starts a server with handler and returns a client for it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewWithHTTPClient(Options{BaseURL: srv.URL}, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestClient_List(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/tasks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get(RequestIDHeader) == "" {
			t.Error("expected request id header")
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, "["+sampleTask+`,{"id":4,"title":"Old","description":"d","due_date":"2024-06-01","completed":true,"created_at":"2024-04-01T10:00:00Z"}]`)
	})

	tasks, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != 3 || tasks[1].ID != 4 {
		t.Errorf("unexpected order: %d, %d", tasks[0].ID, tasks[1].ID)
	}
	if tasks[1].DueDate == nil || tasks[1].DueDate.String() != "2024-06-01" {
		t.Errorf("unexpected due date: %v", tasks[1].DueDate)
	}
}

func TestClient_Create(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/tasks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["title"] != "New" {
			t.Errorf("expected title New, got %v", body["title"])
		}
		if v, ok := body["description"]; !ok || v != nil {
			t.Errorf("expected null description, got %v", v)
		}
		if v, ok := body["due_date"]; !ok || v != nil {
			t.Errorf("expected null due_date, got %v", v)
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, sampleTask)
	})

	d, _ := task.NewDraft("New", "", "")
	got, err := c.Create(context.Background(), d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 3 || got.Title != "New" {
		t.Errorf("unexpected task: %+v", got)
	}
}

func TestClient_ToggleUpdateDelete_Paths(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		io.WriteString(w, sampleTask)
	})

	ctx := context.Background()
	if _, err := c.Toggle(ctx, 3); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	d, _ := task.NewDraft("New", "", "")
	if _, err := c.Update(ctx, 3, d); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := c.Delete(ctx, 3); err != nil {
		t.Fatalf("delete: %v", err)
	}

	expected := []string{"PATCH /api/tasks/3/toggle", "PUT /api/tasks/3", "DELETE /api/tasks/3"}
	if strings.Join(seen, ",") != strings.Join(expected, ",") {
		t.Errorf("expected %v, got %v", expected, seen)
	}
}

func TestClient_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":{"code":500,"message":"database is locked"}}`)
	})

	_, err := c.Toggle(context.Background(), 1)
	if service.KindOf(err) != service.KindServer {
		t.Fatalf("expected server error, got %v", err)
	}
	if service.StatusOf(err) != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", service.StatusOf(err))
	}
	if !strings.Contains(err.Error(), "database is locked") {
		t.Errorf("expected server message in error, got %q", err.Error())
	}
}

func TestClient_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	err := c.Delete(context.Background(), 99)
	if !service.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestClient_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.List(context.Background())
	if !service.IsAuth(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if !strings.Contains(err.Error(), "taskview login") {
		t.Errorf("expected login hint, got %q", err.Error())
	}
}

func TestClient_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":`)
	})

	_, err := c.Toggle(context.Background(), 1)
	if service.KindOf(err) != service.KindTransport {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := NewWithHTTPClient(Options{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = c.List(context.Background())
	if service.KindOf(err) != service.KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout message, got %q", err.Error())
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewWithHTTPClient(Options{BaseURL: url}, &http.Client{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = c.List(context.Background())
	if service.KindOf(err) != service.KindTransport {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestNew_BearerToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		io.WriteString(w, "[]")
	}))
	defer srv.Close()

	c, err := New(context.Background(), Options{
		BaseURL: srv.URL,
		Token:   &oauth2.Token{AccessToken: "secret", TokenType: "Bearer"},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.List(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if auth != "Bearer secret" {
		t.Errorf("expected bearer auth header, got %q", auth)
	}
}

func TestNewWithHTTPClient_InvalidURL(t *testing.T) {
	if _, err := NewWithHTTPClient(Options{BaseURL: "ftp://example.com"}, &http.Client{}); err == nil {
		t.Error("expected error for non-http scheme")
	}
}
