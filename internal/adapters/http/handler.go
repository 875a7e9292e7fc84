// Package httpadapter exposes the conversation core over HTTP. It is
// thin glue: decode, delegate, encode. All invariants live in the
// conversation package.
package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lugia-ai/lugia/internal/app/conversation"
	"github.com/lugia-ai/lugia/internal/domain"
	"github.com/lugia-ai/lugia/internal/observability"
)

type Server struct {
	svc        *conversation.Service
	model      domain.ModelClient
	tokenLimit int
}

func NewServer(svc *conversation.Service, model domain.ModelClient, tokenLimit int, staticDir string) http.Handler {
	s := &Server{svc: svc, model: model, tokenLimit: tokenLimit}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("POST /chat/", s.handleChat)

	mux.HandleFunc("GET /conversations/", s.handleListConversations)
	mux.HandleFunc("POST /conversations/new/", s.handleNewConversation)
	mux.HandleFunc("GET /conversations/history/", s.handleHistory)
	mux.HandleFunc("POST /conversations/switch/", s.handleSwitch)
	mux.HandleFunc("DELETE /conversations/{file}", s.handleDelete)

	if staticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	return chainMiddlewares(mux, withCORS, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type chatRequest struct {
	Model   string `json:"model"`
	Content string `json:"content"`
}

type chatResponse struct {
	Response         string `json:"response"`
	ConversationFile string `json:"conversation_file,omitempty"`
}

type listConversationsResponse struct {
	Conversations []string `json:"conversations"`
}

type conversationCreatedResponse struct {
	Message          string `json:"message"`
	ConversationFile string `json:"conversation_file"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type historyResponse struct {
	Messages []messageResponse `json:"messages"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleChat runs the full turn: resolve the active conversation,
// append the user message, assemble the token-budgeted prompt, call
// the model, and append the reply.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		badRequest(w, "content is required")
		return
	}
	if req.Model == "" {
		badRequest(w, "model is required")
		return
	}

	id, ok := s.svc.ActiveConversation()
	if !ok {
		writeJSON(w, http.StatusOK, chatResponse{
			Response: "No active conversation found. Please create a new conversation or switch to an existing one.",
		})
		return
	}

	if err := s.svc.AddMessage(ctx, domain.RoleUser, req.Content, id); err != nil {
		writeJSON(w, http.StatusOK, chatResponse{Response: err.Error()})
		return
	}

	prompt, err := s.svc.AssemblePrompt(ctx, id, req.Model, s.tokenLimit)
	if err != nil {
		internalError(w, ctx, err)
		return
	}

	reply, err := s.model.Complete(ctx, req.Model, prompt)
	if err != nil {
		internalError(w, ctx, err)
		return
	}

	if err := s.svc.AddMessage(ctx, domain.RoleAssistant, reply, id); err != nil {
		writeJSON(w, http.StatusOK, chatResponse{Response: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:         reply,
		ConversationFile: string(id),
	})
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	ids := s.svc.ListConversations(r.Context())

	files := make([]string, 0, len(ids))
	for _, id := range ids {
		files = append(files, string(id))
	}
	writeJSON(w, http.StatusOK, listConversationsResponse{Conversations: files})
}

func (s *Server) handleNewConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := s.svc.CreateConversation(ctx)
	if err != nil {
		internalError(w, ctx, err)
		return
	}
	s.svc.SetActiveConversation(id)

	writeJSON(w, http.StatusOK, conversationCreatedResponse{
		Message:          "New conversation created.",
		ConversationFile: string(id),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := conversationFileParam(r)
	if !ok {
		badRequest(w, "conversation_file is required")
		return
	}

	history := s.svc.LoadHistory(r.Context(), id)

	msgs := make([]messageResponse, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, messageResponse{
			ID:        string(m.ID),
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}
	writeJSON(w, http.StatusOK, historyResponse{Messages: msgs})
}

func (s *Server) handleSwitch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := conversationFileParam(r)
	if !ok {
		badRequest(w, "conversation_file is required")
		return
	}

	if err := s.svc.SwitchConversation(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "conversation file not found"})
			return
		}
		internalError(w, ctx, err)
		return
	}
	s.svc.SetActiveConversation(id)

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Switched to conversation: " + string(id),
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := domain.ConversationID(r.PathValue("file"))
	if !id.Valid() {
		badRequest(w, "invalid conversation file")
		return
	}

	if err := s.svc.DeleteConversation(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "conversation file not found"})
			return
		}
		internalError(w, ctx, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Conversation " + string(id) + " deleted successfully.",
	})
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func conversationFileParam(r *http.Request) (domain.ConversationID, bool) {
	id := domain.ConversationID(r.URL.Query().Get("conversation_file"))
	if id == "" || !id.Valid() {
		return "", false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func internalError(w http.ResponseWriter, ctx context.Context, err error) {
	observability.LoggerFromContext(ctx).Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
