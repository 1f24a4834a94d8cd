package acceptance

import (
	"fmt"
	"strings"

	"github.com/hitoshi/qanda/internal/model"
)

// Policy は回答の採用を許可するかどうかを判定する。
type Policy interface {
	CanAccept(question *model.Question, answer *model.Answer, actorID string) bool
}

// OpenPolicy は誰にでも採用を許可する。
type OpenPolicy struct{}

// CanAccept は常にtrueを返す。
func (OpenPolicy) CanAccept(*model.Question, *model.Answer, string) bool {
	return true
}

// QuestionAuthorPolicy は質問の投稿者にのみ採用を許可する。
type QuestionAuthorPolicy struct{}

// CanAccept は操作者が質問の投稿者である場合にtrueを返す。
func (QuestionAuthorPolicy) CanAccept(question *model.Question, _ *model.Answer, actorID string) bool {
	actorID = strings.TrimSpace(actorID)
	return actorID != "" && actorID == question.AuthorID
}

// 設定値として受け付けるポリシー名
const (
	PolicyOpen           = "open"
	PolicyQuestionAuthor = "question_author"
)

// ParsePolicy は設定値からPolicyを生成する。空文字列は open として扱う。
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyOpen:
		return OpenPolicy{}, nil
	case PolicyQuestionAuthor:
		return QuestionAuthorPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown accept policy: %q", name)
}
