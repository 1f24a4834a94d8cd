package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/qanda/internal/model"
)

// AcceptanceServiceInterface は回答採用ハンドラーが必要とするサービスインターフェース。
type AcceptanceServiceInterface interface {
	AcceptAnswer(ctx context.Context, answerID int64, actorID string) (*model.Answer, error)
}

// AnswerHandler は回答採用のHTTPハンドラー。
type AnswerHandler struct {
	service AcceptanceServiceInterface
}

// NewAnswerHandler はAnswerHandlerを生成する。
func NewAnswerHandler(service AcceptanceServiceInterface) *AnswerHandler {
	return &AnswerHandler{service: service}
}

// acceptRequest は採用リクエストのボディ。ボディ自体を省略できる。
type acceptRequest struct {
	UserID string `json:"userId"`
}

// AcceptAnswer は回答を採用する。
// POST /api/answers/{id}/accept
func (h *AnswerHandler) AcceptAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	var req acceptRequest
	if err := decodeJSON(r, &req, true); err != nil {
		handleServiceError(w, r, err)
		return
	}

	if _, err := h.service.AcceptAnswer(r.Context(), id, req.UserID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ackResponse{Success: true})
}
