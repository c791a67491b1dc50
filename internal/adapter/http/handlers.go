package http

import (
	"net/http"

	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/service"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// Handlers bundles the services the REST API fronts.
type Handlers struct {
	Tasks   *service.TaskService
	Vars    *service.VariableService
	Links   *service.LinkService
	History *service.HistoryService
	Queries *service.QueryService
	Filters *service.FilterService
}

func NewHandlers(tasks *service.TaskService, vars *service.VariableService, links *service.LinkService, hist *service.HistoryService, queries *service.QueryService, filters *service.FilterService) *Handlers {
	return &Handlers{Tasks: tasks, Vars: vars, Links: links, History: hist, Queries: queries, Filters: filters}
}

// CreateTask makes a new task. Client-chosen ids are allowed; an empty id
// gets a generated one.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	t, ok := readJSON[task.Task](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	t.Revision = 0
	fresh := h.Tasks.Create()
	if t.ID == "" {
		t.ID = fresh.ID
	}
	if t.Priority == 0 {
		t.Priority = fresh.Priority
	}
	if t.CreateTime.IsZero() {
		t.CreateTime = fresh.CreateTime
	}
	if err := h.Tasks.Save(r.Context(), &t); err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.Tasks.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UpdateTask saves the task under the revision the client read. A stale
// revision yields 409.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	t, ok := readJSON[task.Task](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	t.ID = urlParam(r, "id")
	if t.Revision <= 0 {
		writeError(w, http.StatusBadRequest, "revision is required for updates")
		return
	}
	if err := h.Tasks.Save(r.Context(), &t); err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	cascade := r.URL.Query().Get("cascade") == "true"
	reason := r.URL.Query().Get("reason")
	if err := h.Tasks.Delete(r.Context(), urlParam(r, "id"), cascade, reason); err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListSubtasks(w http.ResponseWriter, r *http.Request) {
	subs, err := h.Tasks.SubTasks(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

type userRequest struct {
	UserID string `json:"user_id"`
}

func (h *Handlers) ClaimTask(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[userRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	if !requireField(w, req.UserID, "user_id") {
		return
	}
	if err := h.Tasks.Claim(r.Context(), urlParam(r, "id"), req.UserID); err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnclaimTask releases the task back to its candidates.
func (h *Handlers) UnclaimTask(w http.ResponseWriter, r *http.Request) {
	if err := h.Tasks.SetAssignee(r.Context(), urlParam(r, "id"), ""); err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SetAssignee(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[userRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	if err := h.Tasks.SetAssignee(r.Context(), urlParam(r, "id"), req.UserID); err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DelegateTask(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[userRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	if !requireField(w, req.UserID, "user_id") {
		return
	}
	if err := h.Tasks.Delegate(r.Context(), urlParam(r, "id"), req.UserID); err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ResolveTask(w http.ResponseWriter, r *http.Request) {
	if err := h.Tasks.Resolve(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) CompleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.Tasks.Complete(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SuspendTask(w http.ResponseWriter, r *http.Request) {
	if err := h.Tasks.Suspend(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ActivateTask(w http.ResponseWriter, r *http.Request) {
	if err := h.Tasks.Activate(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type priorityRequest struct {
	Priority int `json:"priority"`
}

func (h *Handlers) SetPriority(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[priorityRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	if err := h.Tasks.SetPriority(r.Context(), urlParam(r, "id"), req.Priority); err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
