package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	staticdir "github.com/Strob0t/TaskForge/internal/adapter/directory"
	"github.com/Strob0t/TaskForge/internal/adapter/memstore"
	"github.com/Strob0t/TaskForge/internal/config"
	"github.com/Strob0t/TaskForge/internal/domain/history"
	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/expr"
	"github.com/Strob0t/TaskForge/internal/middleware"
	"github.com/Strob0t/TaskForge/internal/port/clock"
	"github.com/Strob0t/TaskForge/internal/service"
)

func newTestServer(t *testing.T) (*httptest.Server, *service.TaskService) {
	t.Helper()
	store := memstore.New()
	clk := clock.Fixed{T: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	engine := config.Defaults().Engine
	cmd := service.NewCommands(store, nil, nil)
	rec := service.NewRecorder(history.LevelAudit, clk)
	dir := staticdir.NewStatic()

	tasks := service.NewTaskService(cmd, store, rec, nil, clk, engine, nil)
	vars := service.NewVariableService(cmd, store, clk)
	links := service.NewLinkService(cmd, store, rec, tasks, clk)
	hist := service.NewHistoryService(cmd, store, rec, clk)
	queries := service.NewQueryService(store, dir, expr.NewSandboxed(), clk, engine, nil, nil)
	filters := service.NewFilterService(cmd, store, queries, clk)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Authentication)
	MountRoutes(r, NewHandlers(tasks, vars, links, hist, queries, filters))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, tasks
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "kermit")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks", map[string]any{"name": "review invoice"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decodeBody[task.Task](t, resp)
	if created.ID == "" || created.Revision != 1 {
		t.Fatalf("created = %+v", created)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks/"+created.ID+"/claim", map[string]string{"user_id": "kermit"})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("claim status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	// A second claim by someone else conflicts.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks/"+created.ID+"/claim", map[string]string{"user_id": "gonzo"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("conflicting claim status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks/"+created.ID+"/complete", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("complete status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/tasks/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after complete = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUpdateRequiresRevision(t *testing.T) {
	srv, tasks := newTestServer(t)
	ctx := context.Background()

	tk := tasks.Create()
	if err := tasks.Save(ctx, tk); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/v1/tasks/"+tk.ID, map[string]any{"name": "renamed"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("update without revision = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/v1/tasks/"+tk.ID, map[string]any{"name": "renamed", "revision": tk.Revision})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update = %d, want 200", resp.StatusCode)
	}
	updated := decodeBody[task.Task](t, resp)
	if updated.Revision != 2 || updated.Name != "renamed" {
		t.Fatalf("updated = %+v", updated)
	}

	// Replaying the old revision conflicts.
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/v1/tasks/"+tk.ID, map[string]any{"name": "again", "revision": tk.Revision})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("stale update = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestDeleteRunningTaskForbidden(t *testing.T) {
	srv, tasks := newTestServer(t)
	ctx := context.Background()

	tk := tasks.Create()
	tk.ExecutionID = "exec-1"
	if err := tasks.Save(ctx, tk); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/v1/tasks/"+tk.ID, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("delete running task = %d, want 403", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestVariableRoundTripOverHTTP(t *testing.T) {
	srv, tasks := newTestServer(t)
	ctx := context.Background()

	tk := tasks.Create()
	if err := tasks.Save(ctx, tk); err != nil {
		t.Fatalf("seed: %v", err)
	}
	base := fmt.Sprintf("%s/api/v1/tasks/%s/variables/amount", srv.URL, tk.ID)

	resp := doJSON(t, http.MethodPut, base+"?local=true", map[string]any{"type": "long", "int": 250})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("put variable = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, base, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get variable = %d", resp.StatusCode)
	}
	got := decodeBody[map[string]any](t, resp)
	if got["type"] != "long" {
		t.Fatalf("variable body = %v", got)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/tasks/"+tk.ID+"/variables/missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get absent variable = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestQueryEndpoint(t *testing.T) {
	srv, tasks := newTestServer(t)
	ctx := context.Background()

	mine := tasks.Create()
	mine.Assignee = "kermit"
	if err := tasks.Save(ctx, mine); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := tasks.Save(ctx, tasks.Create()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := map[string]any{"root": map[string]any{"assignee": map[string]any{"val": "kermit"}}}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks/query", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("query = %d", resp.StatusCode)
	}
	got := decodeBody[[]task.Task](t, resp)
	if len(got) != 1 || got[0].ID != mine.ID {
		t.Fatalf("query matched %d tasks", len(got))
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks/count", map[string]any{"root": map[string]any{}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("count = %d", resp.StatusCode)
	}
	count := decodeBody[map[string]int](t, resp)
	if count["count"] != 2 {
		t.Fatalf("count = %d, want 2", count["count"])
	}
}

func TestQueryOffsetWithoutLimitPagesToEnd(t *testing.T) {
	srv, tasks := newTestServer(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := tasks.Save(ctx, tasks.Create()); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	all := map[string]any{"root": map[string]any{}}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks/query?offset=1", all)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("query = %d", resp.StatusCode)
	}
	got := decodeBody[[]task.Task](t, resp)
	if len(got) != 2 {
		t.Fatalf("offset-only page returned %d tasks, want 2", len(got))
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks/query?offset=1&limit=1", all)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("query = %d", resp.StatusCode)
	}
	got = decodeBody[[]task.Task](t, resp)
	if len(got) != 1 {
		t.Fatalf("bounded page returned %d tasks, want 1", len(got))
	}
}
