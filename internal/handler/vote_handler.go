package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/qanda/internal/model"
)

// VoteServiceInterface は投票ハンドラーが必要とするサービスインターフェース。
type VoteServiceInterface interface {
	// Cast は投票を記録し、対象の新しい投票合計を返す。
	Cast(ctx context.Context, target model.VoteTarget, itemID int64, userID string, voteType model.VoteType) (int, error)
}

// VoteHandler は質問・回答への投票のHTTPハンドラー。
type VoteHandler struct {
	service VoteServiceInterface
}

// NewVoteHandler はVoteHandlerを生成する。
func NewVoteHandler(service VoteServiceInterface) *VoteHandler {
	return &VoteHandler{service: service}
}

// voteRequest は投票リクエストのボディ。
type voteRequest struct {
	VoteType *int   `json:"voteType"`
	UserID   string `json:"userId"`
}

// VoteQuestion は質問に投票する。
// POST /api/questions/{id}/vote
func (h *VoteHandler) VoteQuestion(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, model.VoteTargetQuestion)
}

// VoteAnswer は回答に投票する。
// POST /api/answers/{id}/vote
func (h *VoteHandler) VoteAnswer(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, model.VoteTargetAnswer)
}

func (h *VoteHandler) vote(w http.ResponseWriter, r *http.Request, target model.VoteTarget) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	var req voteRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleServiceError(w, r, err)
		return
	}
	if req.VoteType == nil {
		handleServiceError(w, r, model.NewValidationError("voteType", "必須です"))
		return
	}

	sum, err := h.service.Cast(r.Context(), target, id, req.UserID, model.VoteType(*req.VoteType))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, voteResponse{Success: true, VoteCount: sum})
}
