// Package user はユーザーのシャドウレコード管理を提供する。
//
// ユーザーの認証は外部IdPが行い、本サービスはIdPが発行したIDに紐づく
// プロフィールの写しだけを保持する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/qanda/internal/model"
	"github.com/hitoshi/qanda/internal/repository"
)

// SyncInput はIdPから受け取ったプロフィール。空文字列の項目はNULLとして保存される。
type SyncInput struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string
}

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo repository.UserRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// Sync はユーザーを作成し、既存の場合はプロフィールを上書きする。
// 同じ入力で何度呼び出しても結果は変わらない。
func (s *Service) Sync(ctx context.Context, in SyncInput) (*model.User, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, model.NewValidationError("id", "必須です")
	}
	email := strings.TrimSpace(in.Email)
	if email != "" && !strings.Contains(email, "@") {
		return nil, model.NewValidationError("email", "メールアドレスの形式が正しくありません")
	}

	user, err := s.userRepo.Upsert(ctx, &model.User{
		ID:              id,
		Email:           email,
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		ProfileImageURL: strings.TrimSpace(in.ProfileImageURL),
	})
	if err != nil {
		return nil, fmt.Errorf("ユーザーの同期に失敗しました: %w", err)
	}

	slog.Info("ユーザーを同期しました",
		slog.String("user_id", id),
	)
	return user, nil
}

// Get はユーザーを取得する。存在しない場合は USER_NOT_FOUND を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(id)
	}
	return user, nil
}

// Statistics はユーザーの活動集計を返す。
func (s *Service) Statistics(ctx context.Context, id string) (*model.UserStatistics, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	stats, err := s.userRepo.Statistics(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザー統計の取得に失敗しました: %w", err)
	}
	return stats, nil
}
