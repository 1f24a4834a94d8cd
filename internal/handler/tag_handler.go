package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/qanda/internal/model"
)

// TagServiceInterface はタグハンドラーが必要とするサービスインターフェース。
type TagServiceInterface interface {
	List(ctx context.Context) ([]*model.Tag, error)
}

// TagHandler はタグ一覧のHTTPハンドラー。
type TagHandler struct {
	service TagServiceInterface
}

// NewTagHandler はTagHandlerを生成する。
func NewTagHandler(service TagServiceInterface) *TagHandler {
	return &TagHandler{service: service}
}

// ListTags は全タグを名前順に返す。
// GET /api/tags
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	result := make([]tagResponse, len(tags))
	for i, t := range tags {
		result[i] = tagResponse{ID: t.ID, Name: t.Name}
	}
	writeJSON(w, http.StatusOK, result)
}
