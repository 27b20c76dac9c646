// Package fakeprovider runs an httptest chat-completions server that replays
// scripted replies and captures the headers of every request.
package fakeprovider

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/shamank/zg-compute-go/pkg/model"
)

// Reply is one scripted answer. Raw, when set, is written verbatim instead
// of Body.
type Reply struct {
	Status int
	Body   *model.ChatCompletionResponse
	Raw    string
}

// Content is a 200 reply carrying text.
func Content(text string) Reply {
	return Reply{Status: http.StatusOK, Body: &model.ChatCompletionResponse{
		Choices: []model.Choice{{Message: model.ChatMessage{Role: "assistant", Content: text}}},
	}}
}

// Error is a reply with status and an error message in the body.
func Error(status int, msg string) Reply {
	return Reply{Status: status, Body: &model.ChatCompletionResponse{Error: msg}}
}

// Server serves POST /chat/completions. Replies are consumed in order; the
// last one repeats once the script runs out.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	replies  []Reply
	headers  []http.Header
	requests []model.ChatCompletionRequest
}

// Start launches a Server with the given script. Callers must Close it.
func Start(replies ...Reply) *Server {
	s := &Server{replies: replies}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
		http.NotFound(w, r)
		return
	}
	var req model.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.headers = append(s.headers, r.Header.Clone())
	s.requests = append(s.requests, req)
	reply := Reply{Status: http.StatusInternalServerError, Raw: "no scripted reply"}
	if n := len(s.headers); len(s.replies) > 0 {
		i := n - 1
		if i >= len(s.replies) {
			i = len(s.replies) - 1
		}
		reply = s.replies[i]
	}
	s.mu.Unlock()

	if reply.Raw != "" {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(reply.Status)
		_, _ = w.Write([]byte(reply.Raw))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.Status)
	_ = json.NewEncoder(w).Encode(reply.Body)
}

// Headers returns the headers of every request received so far.
func (s *Server) Headers() []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]http.Header(nil), s.headers...)
}

// Requests returns the decoded bodies of every request received so far.
func (s *Server) Requests() []model.ChatCompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ChatCompletionRequest(nil), s.requests...)
}
