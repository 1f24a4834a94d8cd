package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/qanda/internal/model"
	"github.com/hitoshi/qanda/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Sync はIdPのプロフィールでユーザーを作成・更新する。
	Sync(ctx context.Context, in user.SyncInput) (*model.User, error)
	// Get はユーザーを取得する。存在しない場合は USER_NOT_FOUND を返す。
	Get(ctx context.Context, id string) (*model.User, error)
	// Statistics はユーザーの活動集計を返す。
	Statistics(ctx context.Context, id string) (*model.UserStatistics, error)
}

// UserHandler はユーザー管理とプロフィール活動のHTTPハンドラー。
type UserHandler struct {
	service   UserServiceInterface
	questions QuestionServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, questions QuestionServiceInterface) *UserHandler {
	return &UserHandler{
		service:   service,
		questions: questions,
	}
}

// syncUserRequest はユーザー同期リクエストのボディ。
type syncUserRequest struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// SyncUser はユーザーを作成・更新する。
// POST /api/users
func (h *UserHandler) SyncUser(w http.ResponseWriter, r *http.Request) {
	var req syncUserRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleServiceError(w, r, err)
		return
	}

	u, err := h.service.Sync(r.Context(), user.SyncInput{
		ID:              req.ID,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		ProfileImageURL: req.ProfileImageURL,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// GetUser はユーザー情報を返す。
// GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// GetStatistics はユーザーの活動集計を返す。
// GET /api/users/{id}/statistics
func (h *UserHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statisticsResponse{
		UserID:                stats.UserID,
		QuestionCount:         stats.QuestionCount,
		AnswerCount:           stats.AnswerCount,
		AcceptedAnswerCount:   stats.AcceptedAnswerCount,
		QuestionVotesReceived: stats.QuestionVotesReceived,
		AnswerVotesReceived:   stats.AnswerVotesReceived,
	})
}

// ListQuestions はユーザーが投稿した質問を返す。
// GET /api/users/{id}/questions
func (h *UserHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.questions.ListQuestionsByAuthor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuestionResponses(questions))
}

// ListAnswers はユーザーが投稿した回答を返す。
// GET /api/users/{id}/answers
func (h *UserHandler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	answers, err := h.questions.ListAnswersByAuthor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAnswerResponses(answers))
}
