// Package model はドメインモデルを定義する。
package model

import "time"

// Tag は質問に付与されるタグ。名前は小文字・前後空白なしで一意。
type Tag struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
