package handler

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/hitoshi/qanda/internal/model"
	"github.com/hitoshi/qanda/internal/question"
	"github.com/hitoshi/qanda/internal/richtext"
)

// QuestionServiceInterface は質問・回答ハンドラーが必要とするサービスインターフェース。
type QuestionServiceInterface interface {
	CreateQuestion(ctx context.Context, in question.CreateQuestionInput) (*model.QuestionAggregate, error)
	CreateAnswer(ctx context.Context, questionID int64, in question.CreateAnswerInput) (*model.AnswerAggregate, error)
	ListQuestions(ctx context.Context, offset, limit int, filter model.QuestionFilter) ([]*model.QuestionAggregate, error)
	GetQuestion(ctx context.Context, id int64) (*model.QuestionAggregate, error)
	ListAnswers(ctx context.Context, questionID int64) ([]*model.AnswerAggregate, error)
	Search(ctx context.Context, text string) ([]*model.QuestionAggregate, error)
	ListQuestionsByAuthor(ctx context.Context, userID string) ([]*model.QuestionAggregate, error)
	ListAnswersByAuthor(ctx context.Context, userID string) ([]*model.AnswerAggregate, error)
}

// QuestionHandler は質問・回答・検索のHTTPハンドラー。
type QuestionHandler struct {
	service         QuestionServiceInterface
	defaultPageSize int
}

// NewQuestionHandler はQuestionHandlerを生成する。
func NewQuestionHandler(service QuestionServiceInterface, defaultPageSize int) *QuestionHandler {
	if defaultPageSize <= 0 {
		defaultPageSize = 20
	}
	return &QuestionHandler{service: service, defaultPageSize: defaultPageSize}
}

// createQuestionRequest は質問作成リクエストのボディ。
type createQuestionRequest struct {
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	ContentFormat string  `json:"contentFormat"`
	Tags          tagList `json:"tags"`
	AuthorID      string  `json:"authorId"`
}

// createAnswerRequest は回答作成リクエストのボディ。
type createAnswerRequest struct {
	Content       string `json:"content"`
	ContentFormat string `json:"contentFormat"`
	AuthorID      string `json:"authorId"`
}

// ListQuestions は質問一覧を返す。
// GET /api/questions?page=1&limit=20&filter=newest
func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := h.parsePage(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	filter := model.QuestionFilter(r.URL.Query().Get("filter"))

	questions, err := h.service.ListQuestions(r.Context(), offset, limit, filter)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuestionResponses(questions))
}

// parsePage は page と limit をオフセットに変換する。
func (h *QuestionHandler) parsePage(r *http.Request) (offset, limit int, err error) {
	q := r.URL.Query()

	page := 1
	if raw := q.Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, model.NewInvalidPaginationError("page は1以上の整数で指定してください")
		}
	}

	limit = h.defaultPageSize
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, model.NewInvalidPaginationError("limit は1以上の整数で指定してください")
		}
	}

	if page-1 > math.MaxInt32/limit {
		return 0, 0, model.NewInvalidPaginationError("page が大きすぎます")
	}
	return (page - 1) * limit, limit, nil
}

// GetQuestion は質問詳細を返す。
// GET /api/questions/{id}
func (h *QuestionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	q, err := h.service.GetQuestion(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuestionResponse(q))
}

// CreateQuestion は質問を作成する。
// POST /api/questions
func (h *QuestionHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleServiceError(w, r, err)
		return
	}

	format, err := richtext.ParseFormat(req.ContentFormat)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	q, err := h.service.CreateQuestion(r.Context(), question.CreateQuestionInput{
		Title:         req.Title,
		Content:       req.Content,
		ContentFormat: format,
		AuthorID:      req.AuthorID,
		Tags:          req.Tags,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toQuestionResponse(q))
}

// ListAnswers は質問の回答一覧を返す。
// GET /api/questions/{id}/answers
func (h *QuestionHandler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	answers, err := h.service.ListAnswers(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAnswerResponses(answers))
}

// CreateAnswer は質問に回答を作成する。
// POST /api/questions/{id}/answers
func (h *QuestionHandler) CreateAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	var req createAnswerRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleServiceError(w, r, err)
		return
	}

	format, err := richtext.ParseFormat(req.ContentFormat)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	a, err := h.service.CreateAnswer(r.Context(), id, question.CreateAnswerInput{
		Content:       req.Content,
		ContentFormat: format,
		AuthorID:      req.AuthorID,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAnswerResponse(a))
}

// Search はタイトル・本文の部分一致で質問を検索する。
// GET /api/search?q=...
func (h *QuestionHandler) Search(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuestionResponses(questions))
}
