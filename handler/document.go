package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"coedit/internal/document"

	"github.com/gorilla/mux"
)

// FileHandler serves the read-side API over the document store. Writes
// only happen through the websocket protocol.
type FileHandler struct {
	Store *document.Store
}

func NewFileHandler(store *document.Store) *FileHandler {
	return &FileHandler{Store: store}
}

type fileResponse struct {
	Content  string `json:"content"`
	Version  uint64 `json:"version"`
	Language string `json:"language"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ListFiles returns id/name/owner for every document, content omitted.
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.List())
}

// GetFile returns the current content, version and language tag.
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid file id"})
		return
	}

	doc, err := h.Store.Get(id)
	if errors.Is(err, document.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "file not found"})
		return
	}

	writeJSON(w, http.StatusOK, fileResponse{
		Content:  doc.Content,
		Version:  doc.Version,
		Language: doc.Language,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
