package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/darlyn-ai/darlyn/backend/internal/markdown"
	model "github.com/darlyn-ai/darlyn/backend/internal/model/chat"
	chatservice "github.com/darlyn-ai/darlyn/backend/internal/service/chat"
	"github.com/darlyn-ai/darlyn/backend/internal/service/conversation"
	"github.com/darlyn-ai/darlyn/backend/pkg/datauri"
	"github.com/darlyn-ai/darlyn/backend/pkg/utils"
)

// Handler 聊天会话与对话提交的HTTP处理器
type Handler struct {
	sessions *chatservice.Service
	conv     *conversation.Service
}

// New 创建聊天处理器
func New(sessions *chatservice.Service, conv *conversation.Service) *Handler {
	return &Handler{
		sessions: sessions,
		conv:     conv,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions", h.handleListSessions)
	r.Post("/sessions", h.handleCreateSession)
	r.Post("/sessions/{sessionID}/activate", h.handleActivateSession)
	r.Patch("/sessions/{sessionID}", h.handleRenameSession)
	r.Delete("/sessions/{sessionID}", h.handleDeleteSession)
	r.Get("/sessions/{sessionID}/messages", h.handleListMessages)
	r.Post("/chat", h.handleSubmit)
	r.Post("/render", h.handleRender)
}

// handleListSessions 列出所有会话（最新创建的在前）
func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessions": h.sessions.List(),
		"activeId": h.conv.ActiveID(),
	})
}

// handleCreateSession 创建会话并设为当前会话
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session := h.conv.NewSession()
	utils.RespondJSON(w, http.StatusCreated, session)
}

// handleActivateSession 切换当前会话
func (h *Handler) handleActivateSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if !h.conv.Activate(sessionID) {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"activeId": sessionID})
}

// handleRenameSession 重命名会话
func (h *Handler) handleRenameSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Title) == "" {
		utils.RespondError(w, http.StatusBadRequest, "title is required")
		return
	}

	// Unknown ids are a silent no-op in the repository.
	h.sessions.Rename(chi.URLParam(r, "sessionID"), payload.Title)
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteSession 删除会话（如删除的是当前会话则清除指针）
func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	h.conv.DeleteSession(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

type renderedMessage struct {
	model.Message
	Blocks []markdown.Block `json:"blocks,omitempty"`
}

// handleListMessages 返回会话消息；?rendered=1 时附带渲染后的内容块
func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	if r.URL.Query().Get("rendered") == "" {
		utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": session.Messages})
		return
	}

	rendered := make([]renderedMessage, len(session.Messages))
	for i, msg := range session.Messages {
		rendered[i] = renderedMessage{Message: msg, Blocks: markdown.Render(msg.Content)}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": rendered})
}

// handleSubmit 提交一轮对话（文本或带图片）
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text     string `json:"text"`
		ImageURL string `json:"imageUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.ImageURL != "" {
		switch err := datauri.Validate(payload.ImageURL, datauri.MaxAttachmentBytes); {
		case errors.Is(err, datauri.ErrTooLarge):
			utils.RespondError(w, http.StatusRequestEntityTooLarge, "Please select an image smaller than 5MB.")
			return
		case err != nil:
			utils.RespondError(w, http.StatusBadRequest, "imageUrl must be a base64 data URI")
			return
		}
	}

	reply, sessionID, err := h.conv.Submit(r.Context(), payload.Text, payload.ImageURL)
	if errors.Is(err, conversation.ErrEmptySubmit) {
		utils.RespondError(w, http.StatusBadRequest, "text or image is required")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "submit failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"message":   reply,
		"blocks":    markdown.Render(reply.Content),
	})
}

// handleRender 将任意内容渲染为结构化内容块
func (h *Handler) handleRender(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"blocks": markdown.Render(payload.Content)})
}
