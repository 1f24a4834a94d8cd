// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, question, answer, user, policy, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeInvalidID           = "INVALID_ID"
	ErrCodeInvalidVoteType     = "INVALID_VOTE_TYPE"
	ErrCodeInvalidFilter       = "INVALID_FILTER"
	ErrCodeInvalidPagination   = "INVALID_PAGINATION"
	ErrCodeTooManyTags         = "TOO_MANY_TAGS"
	ErrCodeSearchQueryRequired = "SEARCH_QUERY_REQUIRED"
	ErrCodeQuestionNotFound    = "QUESTION_NOT_FOUND"
	ErrCodeAnswerNotFound      = "ANSWER_NOT_FOUND"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeAcceptForbidden     = "ACCEPT_FORBIDDEN"
	ErrCodeEmailAlreadyInUse   = "EMAIL_ALREADY_IN_USE"
	ErrCodeIntegrityConflict   = "INTEGRITY_CONFLICT"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewValidationError は入力値の検証エラーを生成する。
// fieldは問題のあるフィールド名、reasonは理由を表す。
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("%s が不正です: %s", field, reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidIDError はパスパラメータのIDが数値として解釈できない場合のエラーを生成する。
func NewInvalidIDError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidID,
		Message:  fmt.Sprintf("無効なIDです: %s", raw),
		Category: "validation",
		Action:   "正の整数のIDを指定してください。",
	}
}

// NewInvalidVoteTypeError は投票値が+1/-1以外の場合のエラーを生成する。
func NewInvalidVoteTypeError(v int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidVoteType,
		Message:  fmt.Sprintf("無効な投票値です: %d", v),
		Category: "validation",
		Action:   "voteType には 1 または -1 を指定してください。",
	}
}

// NewInvalidFilterError は無効なフィルタエラーを生成する。
func NewInvalidFilterError(filter string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFilter,
		Message:  fmt.Sprintf("無効なフィルタです: %s", filter),
		Category: "validation",
		Action:   "フィルタには newest、unanswered、most-voted のいずれかを指定してください。",
	}
}

// NewInvalidPaginationError はページ指定が不正な場合のエラーを生成する。
func NewInvalidPaginationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPagination,
		Message:  fmt.Sprintf("無効なページ指定です: %s", reason),
		Category: "validation",
		Action:   "page と limit には1以上の整数を指定してください。",
	}
}

// NewTooManyTagsError はタグ数が上限を超えた場合のエラーを生成する。
func NewTooManyTagsError(max int) *APIError {
	return &APIError{
		Code:     ErrCodeTooManyTags,
		Message:  fmt.Sprintf("タグは最大%d個までです。", max),
		Category: "validation",
		Action:   "タグの数を減らしてください。",
	}
}

// NewSearchQueryRequiredError は検索語が空の場合のエラーを生成する。
func NewSearchQueryRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeSearchQueryRequired,
		Message:  "検索語が指定されていません。",
		Category: "validation",
		Action:   "q パラメータに検索語を指定してください。",
	}
}

// NewQuestionNotFoundError は質問未検出エラーを生成する。
func NewQuestionNotFoundError(questionID int64) *APIError {
	return &APIError{
		Code:     ErrCodeQuestionNotFound,
		Message:  fmt.Sprintf("指定された質問が見つかりません: %d", questionID),
		Category: "question",
		Action:   "質問IDを確認してください。",
	}
}

// NewAnswerNotFoundError は回答未検出エラーを生成する。
func NewAnswerNotFoundError(answerID int64) *APIError {
	return &APIError{
		Code:     ErrCodeAnswerNotFound,
		Message:  fmt.Sprintf("指定された回答が見つかりません: %d", answerID),
		Category: "answer",
		Action:   "回答IDを確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("ユーザーが見つかりません: %s", userID),
		Category: "user",
		Action:   "ユーザー情報を同期してから再度お試しください。",
	}
}

// NewAcceptForbiddenError は回答の採用が許可されていない場合のエラーを生成する。
func NewAcceptForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeAcceptForbidden,
		Message:  "この回答を採用する権限がありません。",
		Category: "policy",
		Action:   "質問の投稿者のみが回答を採用できます。",
	}
}

// NewEmailAlreadyInUseError はメールアドレスが別ユーザーで使用済みの場合のエラーを生成する。
func NewEmailAlreadyInUseError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailAlreadyInUse,
		Message:  "このメールアドレスは別のユーザーで使用されています。",
		Category: "user",
		Action:   "IdP側のアカウント情報を確認してください。",
	}
}

// NewIntegrityConflictError はUPSERTで吸収できなかった一意制約違反を表すエラーを生成する。
// 5xxとして扱い、ログに記録する。
func NewIntegrityConflictError(constraint string) *APIError {
	return &APIError{
		Code:     ErrCodeIntegrityConflict,
		Message:  fmt.Sprintf("データの整合性制約に違反しました: %s", constraint),
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "Retry-After ヘッダーの秒数だけ待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
