// Package model はドメインモデルを定義する。
package model

import "time"

// User は外部IdPが発行したIDに紐づくユーザーのシャドウレコードを表す。
// プロフィール項目はIdPからの同期で更新され、未同期のスタブでは空文字列となる。
type User struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UserStatistics はプロフィール画面に表示するユーザーの活動集計。
type UserStatistics struct {
	UserID                string
	QuestionCount         int
	AnswerCount           int
	AcceptedAnswerCount   int
	QuestionVotesReceived int
	AnswerVotesReceived   int
}
