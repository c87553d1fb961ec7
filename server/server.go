// Package server is the HTTP collaborator in front of the orchestration
// core. It decodes uploads, delegates to the orchestrator and encodes JSON
// responses; no orchestration logic lives here.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/hupe1980/turnguard/core"
	"github.com/hupe1980/turnguard/gateway"
	"github.com/hupe1980/turnguard/logging"
	"github.com/hupe1980/turnguard/orchestrator"
)

// maxUploadBytes bounds multipart form memory usage.
const maxUploadBytes = 10 << 20

// allowedImageExts are the accepted upload extensions.
var allowedImageExts = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// defaultConversationID serves clients that do not manage conversation
// identities of their own.
const defaultConversationID = "default"

// Handler is the slice of the orchestrator the server needs.
type Handler interface {
	HandleTurn(ctx context.Context, conversationID string, input core.TurnInput) (orchestrator.Result, error)
	History(ctx context.Context, conversationID string, limit int) ([]core.Turn, error)
	ClearHistory(ctx context.Context, conversationID string) error
}

// Options configures a Server.
type Options struct {
	Logger logging.Logger
}

// Server exposes the chat endpoints over HTTP.
type Server struct {
	handler Handler
	logger  logging.Logger
}

// New constructs a Server around the given turn handler.
func New(handler Handler, optFns ...func(o *Options)) *Server {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Server{handler: handler, logger: opts.Logger}
}

// Routes returns the HTTP mux with all endpoints registered.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /get_history", s.handleGetHistory)
	mux.HandleFunc("POST /clear_history", s.handleClearHistory)
	return mux
}

type chatResponse struct {
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

// historyResponse always carries the history key, even when empty, so
// clients can consume it without nil checks.
type historyResponse struct {
	History []core.Turn `json:"history"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, chatResponse{Error: "invalid multipart form"})
		return
	}

	conversationID := r.FormValue("conversation_id")
	if conversationID == "" {
		conversationID = defaultConversationID
	}

	input := core.TurnInput{Text: strings.TrimSpace(r.FormValue("text_input"))}
	if file, header, err := r.FormFile("image_file"); err == nil {
		defer file.Close()
		ext := strings.ToLower(filepath.Ext(header.Filename))
		mime, ok := allowedImageExts[ext]
		if !ok {
			writeJSON(w, http.StatusBadRequest, chatResponse{Error: "unsupported image type"})
			return
		}
		data, err := io.ReadAll(file)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, chatResponse{Error: "failed to read image"})
			return
		}
		input.Image = data
		input.ImageName = header.Filename
		input.ImageMIME = mime
	}

	result, err := s.handler.HandleTurn(r.Context(), conversationID, input)
	if err != nil {
		status, msg := statusFor(err, result.Reply)
		// A safety refusal is delivered as a normal reply, not an error.
		if status == http.StatusOK {
			writeJSON(w, status, chatResponse{Reply: msg})
			return
		}
		writeJSON(w, status, chatResponse{Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: result.Reply})
}

// statusFor maps the orchestrator's error taxonomy onto HTTP status codes.
func statusFor(err error, reply string) (int, string) {
	var unsafeErr *orchestrator.UnsafeInputError
	if errors.As(err, &unsafeErr) {
		return http.StatusOK, reply
	}
	if errors.Is(err, orchestrator.ErrInvalidInput) {
		return http.StatusBadRequest, orchestrator.ErrInvalidInput.Error()
	}
	if errors.Is(err, orchestrator.ErrDeadlineExceeded) {
		return http.StatusGatewayTimeout, reply
	}
	var gerr *gateway.Error
	if errors.As(err, &gerr) {
		switch gerr.Kind {
		case gateway.KindTransientExhausted, gateway.KindUnavailable, gateway.KindRateLimited, gateway.KindTransient:
			return http.StatusServiceUnavailable, reply
		case gateway.KindInvalidRequest:
			return http.StatusBadRequest, reply
		}
	}
	return http.StatusInternalServerError, reply
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversation_id")
	if conversationID == "" {
		conversationID = defaultConversationID
	}
	turns, err := s.handler.History(r.Context(), conversationID, 0)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, chatResponse{Error: "failed to load history"})
		return
	}
	if turns == nil {
		turns = []core.Turn{}
	}
	writeJSON(w, http.StatusOK, historyResponse{History: turns})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	conversationID := r.FormValue("conversation_id")
	if conversationID == "" {
		conversationID = defaultConversationID
	}
	if err := s.handler.ClearHistory(r.Context(), conversationID); err != nil {
		writeJSON(w, http.StatusInternalServerError, chatResponse{Error: "failed to clear history"})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: "History cleared successfully."})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
