package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/qanda/internal/middleware"
	"github.com/hitoshi/qanda/internal/model"
)

// authorResponse は投稿者情報のAPIレスポンス。
type authorResponse struct {
	ID              string  `json:"id"`
	Email           *string `json:"email"`
	FirstName       *string `json:"firstName"`
	LastName        *string `json:"lastName"`
	ProfileImageURL *string `json:"profileImageUrl"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	authorResponse
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// questionResponse は集計値付き質問のAPIレスポンス。
type questionResponse struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Author      authorResponse `json:"author"`
	VoteCount   int            `json:"voteCount"`
	AnswerCount int            `json:"answerCount"`
	Tags        []string       `json:"tags"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// answerResponse は集計値付き回答のAPIレスポンス。
type answerResponse struct {
	ID         int64          `json:"id"`
	QuestionID int64          `json:"questionId"`
	Content    string         `json:"content"`
	Author     authorResponse `json:"author"`
	VoteCount  int            `json:"voteCount"`
	IsAccepted bool           `json:"isAccepted"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// tagResponse はタグのAPIレスポンス。
type tagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// statisticsResponse はユーザー統計のAPIレスポンス。
type statisticsResponse struct {
	UserID                string `json:"userId"`
	QuestionCount         int    `json:"questionCount"`
	AnswerCount           int    `json:"answerCount"`
	AcceptedAnswerCount   int    `json:"acceptedAnswerCount"`
	QuestionVotesReceived int    `json:"questionVotesReceived"`
	AnswerVotesReceived   int    `json:"answerVotesReceived"`
}

// voteResponse は投票結果のAPIレスポンス。
type voteResponse struct {
	Success   bool `json:"success"`
	VoteCount int  `json:"voteCount"`
}

// ackResponse は本文を持たない成功レスポンス。
type ackResponse struct {
	Success bool `json:"success"`
}

// --- 変換 ---

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toAuthorResponse(u model.User) authorResponse {
	return authorResponse{
		ID:              u.ID,
		Email:           optionalString(u.Email),
		FirstName:       optionalString(u.FirstName),
		LastName:        optionalString(u.LastName),
		ProfileImageURL: optionalString(u.ProfileImageURL),
	}
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		authorResponse: toAuthorResponse(*u),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func toQuestionResponse(q *model.QuestionAggregate) questionResponse {
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	return questionResponse{
		ID:          q.ID,
		Title:       q.Title,
		Content:     q.Content,
		Author:      toAuthorResponse(q.Author),
		VoteCount:   q.VoteCount,
		AnswerCount: q.AnswerCount,
		Tags:        tags,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
}

func toQuestionResponses(qs []*model.QuestionAggregate) []questionResponse {
	result := make([]questionResponse, len(qs))
	for i, q := range qs {
		result[i] = toQuestionResponse(q)
	}
	return result
}

func toAnswerResponse(a *model.AnswerAggregate) answerResponse {
	return answerResponse{
		ID:         a.ID,
		QuestionID: a.QuestionID,
		Content:    a.Content,
		Author:     toAuthorResponse(a.Author),
		VoteCount:  a.VoteCount,
		IsAccepted: a.IsAccepted,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func toAnswerResponses(as []*model.AnswerAggregate) []answerResponse {
	result := make([]answerResponse, len(as))
	for i, a := range as {
		result[i] = toAnswerResponse(a)
	}
	return result
}

// --- リクエスト・レスポンスのヘルパー ---

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON はリクエストボディをデコードする。
// allowEmptyがtrueの場合、空のボディはエラーにしない。
func decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return model.NewInvalidRequestError()
	}
	return nil
}

// parseIDParam はパスパラメータを正の整数IDとして解釈する。
func parseIDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, model.NewInvalidIDError(raw)
	}
	return id, nil
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.RequestIDFromContext(r.Context())

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		if statusCode >= http.StatusInternalServerError {
			slog.Error("integrity error",
				slog.String("error", err.Error()),
				slog.String("code", apiErr.Code),
				slog.String("request_id", requestID),
			)
		}
		middleware.WriteErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", requestID),
	)
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidRequest,
		model.ErrCodeValidationFailed,
		model.ErrCodeInvalidID,
		model.ErrCodeInvalidVoteType,
		model.ErrCodeInvalidFilter,
		model.ErrCodeInvalidPagination,
		model.ErrCodeTooManyTags,
		model.ErrCodeSearchQueryRequired:
		return http.StatusBadRequest
	case model.ErrCodeQuestionNotFound, model.ErrCodeAnswerNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeAcceptForbidden:
		return http.StatusForbidden
	case model.ErrCodeEmailAlreadyInUse:
		return http.StatusConflict
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// tagList は配列とカンマ区切り文字列のどちらでも受け付けるタグ指定。
type tagList []string

// UnmarshalJSON は ["a","b"] と "a, b" の両方を解釈する。nullは空として扱う。
func (t *tagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = strings.Split(s, ",")
	return nil
}
