package http

import (
	"math"
	"net/http"

	"github.com/Strob0t/TaskForge/internal/domain/filter"
	"github.com/Strob0t/TaskForge/internal/domain/query"
)

type countResponse struct {
	Count int `json:"count"`
}

// pageBounds reads ?offset and ?limit. An offset with no limit pages from
// the offset to the end of the result. paged is false when neither is set.
func pageBounds(r *http.Request) (offset, limit int, paged bool) {
	offset = queryInt(r, "offset", 0)
	limit = queryInt(r, "limit", 0)
	if offset == 0 && limit == 0 {
		return 0, 0, false
	}
	if limit <= 0 {
		limit = math.MaxInt - offset
	}
	return offset, limit, true
}

// QueryTasks executes an ad-hoc task query. The body is the serialized
// query; ?offset and ?limit page the result.
func (h *Handlers) QueryTasks(w http.ResponseWriter, r *http.Request) {
	q, ok := readJSON[query.TaskQuery](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	offset, limit, paged := pageBounds(r)

	if !paged {
		tasks, err := h.Queries.List(r.Context(), &q)
		if err != nil {
			writeDomainError(w, err, "query failed")
			return
		}
		writeJSON(w, http.StatusOK, tasks)
		return
	}
	tasks, err := h.Queries.ListPage(r.Context(), &q, offset, limit)
	if err != nil {
		writeDomainError(w, err, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// CountTasks executes an ad-hoc query and returns the match count only.
func (h *Handlers) CountTasks(w http.ResponseWriter, r *http.Request) {
	q, ok := readJSON[query.TaskQuery](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	n, err := h.Queries.Count(r.Context(), &q)
	if err != nil {
		writeDomainError(w, err, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (h *Handlers) CreateFilter(w http.ResponseWriter, r *http.Request) {
	f, ok := readJSON[filter.Filter](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	f.Revision = 0
	if err := h.Filters.Save(r.Context(), &f); err != nil {
		writeDomainError(w, err, "filter not found")
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *Handlers) ListFilters(w http.ResponseWriter, r *http.Request) {
	filters, err := h.Filters.List(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		writeDomainError(w, err, "filter not found")
		return
	}
	writeJSON(w, http.StatusOK, filters)
}

func (h *Handlers) GetFilter(w http.ResponseWriter, r *http.Request) {
	f, err := h.Filters.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "filter not found")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *Handlers) UpdateFilter(w http.ResponseWriter, r *http.Request) {
	f, ok := readJSON[filter.Filter](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	f.ID = urlParam(r, "id")
	if f.Revision <= 0 {
		writeError(w, http.StatusBadRequest, "revision is required for updates")
		return
	}
	if err := h.Filters.Save(r.Context(), &f); err != nil {
		writeDomainError(w, err, "filter not found")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *Handlers) DeleteFilter(w http.ResponseWriter, r *http.Request) {
	if err := h.Filters.Delete(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "filter not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExecuteFilter runs a saved filter's query with optional paging.
func (h *Handlers) ExecuteFilter(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	offset, limit, paged := pageBounds(r)

	if !paged {
		tasks, err := h.Filters.ExecuteList(r.Context(), id)
		if err != nil {
			writeDomainError(w, err, "filter not found")
			return
		}
		writeJSON(w, http.StatusOK, tasks)
		return
	}
	tasks, err := h.Filters.ExecutePage(r.Context(), id, offset, limit)
	if err != nil {
		writeDomainError(w, err, "filter not found")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handlers) CountFilter(w http.ResponseWriter, r *http.Request) {
	n, err := h.Filters.ExecuteCount(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "filter not found")
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

// SingleFilterResult runs a saved filter expecting at most one match.
// No match is 404; more than one is 400.
func (h *Handlers) SingleFilterResult(w http.ResponseWriter, r *http.Request) {
	t, err := h.Filters.ExecuteSingle(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "filter not found")
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "no matching task")
		return
	}
	writeJSON(w, http.StatusOK, t)
}
