// Package model はドメインモデルを定義する。
package model

import "time"

// VoteTarget は投票対象の種別を表す。
type VoteTarget string

const (
	// VoteTargetQuestion は質問への投票。
	VoteTargetQuestion VoteTarget = "question"
	// VoteTargetAnswer は回答への投票。
	VoteTargetAnswer VoteTarget = "answer"
)

// VoteType は投票の向き。+1（賛成）または-1（反対）のみ有効。
type VoteType int

const (
	VoteUp   VoteType = 1
	VoteDown VoteType = -1
)

// Valid は投票値が+1または-1であるかを返す。
func (v VoteType) Valid() bool {
	return v == VoteUp || v == VoteDown
}

// Vote は(対象, ユーザー)ごとに1行だけ存在する投票を表す。
// 再投票は新しい行を作らずVoteTypeを上書きする。
type Vote struct {
	Target    VoteTarget
	ItemID    int64
	UserID    string
	VoteType  VoteType
	CreatedAt time.Time
	UpdatedAt time.Time
}
