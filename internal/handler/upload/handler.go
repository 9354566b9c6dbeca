package upload

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/darlyn-ai/darlyn/backend/pkg/datauri"
	"github.com/darlyn-ai/darlyn/backend/pkg/utils"
)

// Handler 文件编码的HTTP处理器：把上传的图片编码为 data URI。
type Handler struct{}

// New 创建上传处理器
func New() *Handler {
	return &Handler{}
}

// RegisterRoutes 注册上传相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/uploads", h.handleUpload)
}

// handleUpload 接收 multipart 文件并返回 data URI。kind=profile 限 2MB，
// 其余（聊天附件）限 5MB。
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := datauri.MaxAttachmentBytes
	limitMsg := "Please select an image smaller than 5MB."
	if r.URL.Query().Get("kind") == "profile" {
		maxBytes = datauri.MaxProfilePhotoBytes
		limitMsg = "Please select an image smaller than 2MB."
	}

	// The reader bound only guards against grossly oversized bodies; the
	// per-kind cap is enforced on the decoded file bytes below.
	r.Body = http.MaxBytesReader(w, r.Body, int64(datauri.MaxAttachmentBytes)+64*1024)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			utils.RespondError(w, http.StatusRequestEntityTooLarge, limitMsg)
			return
		}
		utils.RespondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.RespondError(w, http.StatusRequestEntityTooLarge, limitMsg)
		return
	}

	uri, err := datauri.Encode(header.Header.Get("Content-Type"), data, maxBytes)
	if errors.Is(err, datauri.ErrTooLarge) {
		utils.RespondError(w, http.StatusRequestEntityTooLarge, limitMsg)
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to encode file")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"dataUri": uri})
}
