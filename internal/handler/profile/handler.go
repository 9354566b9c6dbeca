package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	profileservice "github.com/darlyn-ai/darlyn/backend/internal/service/profile"
	"github.com/darlyn-ai/darlyn/backend/pkg/datauri"
	"github.com/darlyn-ai/darlyn/backend/pkg/utils"
)

// Handler 用户资料的HTTP处理器
type Handler struct {
	profiles *profileservice.Service
}

// New 创建资料处理器
func New(profiles *profileservice.Service) *Handler {
	return &Handler{profiles: profiles}
}

// RegisterRoutes 注册资料相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/profile", h.handleGetProfile)
	r.Put("/profile", h.handleSaveProfile)
	r.Patch("/profile/photo", h.handleSetPhoto)
}

// handleGetProfile 返回当前资料（从未保存过时为空记录）
func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.profiles.Get())
}

// handleSaveProfile 保存姓名与头像（首次使用必须提供姓名）
func (h *Handler) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name         string `json:"name"`
		PhotoDataURI string `json:"photoDataUri"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.PhotoDataURI != "" {
		if err := h.validatePhoto(w, payload.PhotoDataURI); err != nil {
			return
		}
	}

	if err := h.profiles.Save(payload.Name, payload.PhotoDataURI); err != nil {
		if errors.Is(err, profileservice.ErrNameRequired) {
			utils.RespondError(w, http.StatusBadRequest, "Please enter your name.")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	utils.RespondJSON(w, http.StatusOK, h.profiles.Get())
}

// handleSetPhoto 仅更新头像
func (h *Handler) handleSetPhoto(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PhotoDataURI string `json:"photoDataUri"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.PhotoDataURI != "" {
		if err := h.validatePhoto(w, payload.PhotoDataURI); err != nil {
			return
		}
	}

	h.profiles.SetPhoto(payload.PhotoDataURI)
	utils.RespondJSON(w, http.StatusOK, h.profiles.Get())
}

// validatePhoto writes the error response itself and reports it to the caller.
func (h *Handler) validatePhoto(w http.ResponseWriter, uri string) error {
	switch err := datauri.Validate(uri, datauri.MaxProfilePhotoBytes); {
	case errors.Is(err, datauri.ErrTooLarge):
		utils.RespondError(w, http.StatusRequestEntityTooLarge, "Please select an image smaller than 2MB.")
		return err
	case err != nil:
		utils.RespondError(w, http.StatusBadRequest, "photoDataUri must be a base64 data URI")
		return err
	}
	return nil
}
