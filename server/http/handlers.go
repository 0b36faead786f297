package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/w-h-a/recall"
	"github.com/w-h-a/recall/storer"
	"github.com/w-h-a/recall/ui"
)

type chatRequest struct {
	Message string `json:"message"`
	Text    string `json:"text"`
	Stream  bool   `json:"stream"`
}

type chatResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type memoryEntry struct {
	Id        int64     `json:"id"`
	Vector    []float32 `json:"vector"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind"`
	Timestamp string    `json:"timestamp"`
}

type listMemoriesResponse struct {
	Memories []memoryEntry `json:"memories"`
	Count    int           `json:"count"`
	Total    int64         `json:"total"`
}

type memorizeRequest struct {
	ConversationHistory []string `json:"conversationHistory"`
}

type memorizeResponse struct {
	Message            string `json:"message"`
	ConversationLength int    `json:"conversationLength"`
}

type forgetResponse struct {
	Message      string  `json:"message"`
	DeletedIds   []int64 `json:"deletedIds"`
	DeletedCount int     `json:"deletedCount"`
	Result       string  `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *httpServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(ui.Index)
}

func (s *httpServer) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	message := req.Message
	if len(message) == 0 {
		message = req.Text
	}

	reply, err := s.service.Chat(r.Context(), message)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.Stream || strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		s.stream(w, r, reply)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Message: reply, Success: true})
}

// stream replays an already-complete reply word by word as SSE frames.
// The ticker stops as soon as the client goes away.
func (s *httpServer) stream(w http.ResponseWriter, r *http.Request, reply string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	for _, token := range strings.Fields(reply) {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		fmt.Fprintf(w, "data: %s\n\n", token)
		flusher.Flush()
	}

	fmt.Fprint(w, "event: done\ndata: [DONE]\n\n")
	flusher.Flush()
}

func (s *httpServer) handleListMemories(w http.ResponseWriter, r *http.Request) {
	records, total, err := s.service.ListMemories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	memories := make([]memoryEntry, 0, len(records))
	for _, rec := range records {
		memories = append(memories, toEntry(rec))
	}

	writeJSON(w, http.StatusOK, listMemoriesResponse{
		Memories: memories,
		Count:    len(memories),
		Total:    total,
	})
}

func (s *httpServer) handleMemorize(w http.ResponseWriter, r *http.Request) {
	var req memorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	_, _, err := s.service.Memorize(r.Context(), req.ConversationHistory)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, memorizeResponse{
		Message:            "conversation summarized and stored",
		ConversationLength: len(req.ConversationHistory),
	})
}

func (s *httpServer) handleForget(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.service.Forget(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	if deleted == nil {
		deleted = []int64{}
	}

	writeJSON(w, http.StatusOK, forgetResponse{
		Message:      "all memories deleted",
		DeletedIds:   deleted,
		DeletedCount: len(deleted),
		Result:       "ok",
	})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("Not found"))
}

func toEntry(rec storer.Record) memoryEntry {
	return memoryEntry{
		Id:        rec.Id,
		Vector:    rec.Embedding,
		Message:   rec.Text,
		Kind:      rec.Kind,
		Timestamp: rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if recall.IsValidation(err) {
		status = http.StatusBadRequest
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
