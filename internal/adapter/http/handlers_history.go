package http

import (
	"net/http"
)

// ListEvents returns the task's audit trail, empty below history level
// audit.
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.History.Events(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.History.Comments(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

type commentRequest struct {
	Message string `json:"message"`
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[commentRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	c, err := h.History.AddComment(r.Context(), urlParam(r, "id"), req.Message)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	if c == nil {
		// Below the audit threshold nothing is stored.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handlers) ListAttachments(w http.ResponseWriter, r *http.Request) {
	attachments, err := h.History.Attachments(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, attachments)
}

type attachmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

func (h *Handlers) AddAttachment(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[attachmentRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	a, err := h.History.AddAttachment(r.Context(), urlParam(r, "id"), req.Name, req.Description, req.URL)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *Handlers) GetAttachment(w http.ResponseWriter, r *http.Request) {
	a, err := h.History.GetAttachment(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "attachment not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handlers) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	if err := h.History.DeleteAttachment(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "attachment not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
