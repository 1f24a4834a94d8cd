// Package model はドメインモデルを定義する。
package model

import "time"

// Question は質問を表す。作成後は変更されない。
type Question struct {
	ID        int64
	Title     string
	Content   string // サニタイズ済みHTML
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Answer は質問への回答を表す。
// IsAcceptedはAcceptance Managerのみが変更する。
type Answer struct {
	ID         int64
	QuestionID int64
	Content    string // サニタイズ済みHTML
	AuthorID   string
	IsAccepted bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// QuestionAggregate は質問に投票合計・回答数・タグ名・投稿者を結合した読み取りモデル。
// 集計値はすべて読み取り時に計算される。
type QuestionAggregate struct {
	Question
	Author      User
	VoteCount   int
	AnswerCount int
	Tags        []string // 重複なし、名前順
}

// AnswerAggregate は回答に投票合計と投稿者を結合した読み取りモデル。
type AnswerAggregate struct {
	Answer
	Author    User
	VoteCount int
}

// QuestionFilter は質問一覧の並び順・絞り込み種別を表す。
type QuestionFilter string

const (
	// QuestionFilterNewest は作成日時の降順。
	QuestionFilterNewest QuestionFilter = "newest"
	// QuestionFilterUnanswered は回答が0件の質問のみを作成日時の降順で返す。
	QuestionFilterUnanswered QuestionFilter = "unanswered"
	// QuestionFilterMostVoted は投票合計の降順。同点は作成日時の降順。
	QuestionFilterMostVoted QuestionFilter = "most-voted"
)

// Valid はフィルタ値が定義済みかどうかを返す。
func (f QuestionFilter) Valid() bool {
	switch f {
	case QuestionFilterNewest, QuestionFilterUnanswered, QuestionFilterMostVoted:
		return true
	}
	return false
}
