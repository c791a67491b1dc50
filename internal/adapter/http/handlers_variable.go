package http

import (
	"net/http"
	"strings"

	"github.com/Strob0t/TaskForge/internal/domain/identity"
	"github.com/Strob0t/TaskForge/internal/domain/variable"
)

// ListVariables returns the task's visible variables with local values
// shadowing inherited ones. ?names=a,b restricts the result.
func (h *Handlers) ListVariables(w http.ResponseWriter, r *http.Request) {
	var names []string
	if raw := r.URL.Query().Get("names"); raw != "" {
		for _, n := range strings.Split(raw, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	}
	vars, err := h.Vars.GetAll(r.Context(), urlParam(r, "id"), names...)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, vars)
}

// GetVariable resolves one variable. ?local=true restricts the lookup to
// the task's own scope. A missing variable is 404.
func (h *Handlers) GetVariable(w http.ResponseWriter, r *http.Request) {
	taskID, name := urlParam(r, "id"), urlParam(r, "name")
	get := h.Vars.Get
	if r.URL.Query().Get("local") == "true" {
		get = h.Vars.GetLocal
	}
	v, err := get(r.Context(), taskID, name)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	if v == nil {
		writeError(w, http.StatusNotFound, "variable not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// PutVariable sets one variable. The body is the typed value; ?local=true
// writes into the task scope instead of passing through to the parent.
func (h *Handlers) PutVariable(w http.ResponseWriter, r *http.Request) {
	val, ok := readJSON[variable.Value](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	taskID, name := urlParam(r, "id"), urlParam(r, "name")
	set := h.Vars.Set
	if r.URL.Query().Get("local") == "true" {
		set = h.Vars.SetLocal
	}
	if err := set(r.Context(), taskID, name, val); err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DeleteVariable(w http.ResponseWriter, r *http.Request) {
	taskID, name := urlParam(r, "id"), urlParam(r, "name")
	remove := h.Vars.Remove
	if r.URL.Query().Get("local") == "true" {
		remove = h.Vars.RemoveLocal
	}
	if err := remove(r.Context(), taskID, name); err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListIdentityLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.Links.Links(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, links)
}

type linkRequest struct {
	UserID  string `json:"user_id,omitempty"`
	GroupID string `json:"group_id,omitempty"`
	Type    string `json:"type"`
}

func (req linkRequest) linkType() identity.LinkType {
	if req.Type == "" {
		return identity.LinkCandidate
	}
	return identity.LinkType(req.Type)
}

func (h *Handlers) AddIdentityLink(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[linkRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	taskID := urlParam(r, "id")
	var err error
	if req.GroupID != "" {
		err = h.Links.AddGroupLink(r.Context(), taskID, req.GroupID, req.linkType())
	} else {
		err = h.Links.AddUserLink(r.Context(), taskID, req.UserID, req.linkType())
	}
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteIdentityLink removes a link named in the body. A POST with a body
// rather than DELETE because the link has no id of its own in the API.
func (h *Handlers) DeleteIdentityLink(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[linkRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	taskID := urlParam(r, "id")
	var err error
	if req.GroupID != "" {
		err = h.Links.DeleteGroupLink(r.Context(), taskID, req.GroupID, req.linkType())
	} else {
		err = h.Links.DeleteUserLink(r.Context(), taskID, req.UserID, req.linkType())
	}
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
