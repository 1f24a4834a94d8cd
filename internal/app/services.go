package app

import (
	"database/sql"
	"fmt"

	"github.com/hitoshi/qanda/internal/acceptance"
	"github.com/hitoshi/qanda/internal/config"
	"github.com/hitoshi/qanda/internal/database"
	"github.com/hitoshi/qanda/internal/metrics"
	"github.com/hitoshi/qanda/internal/question"
	"github.com/hitoshi/qanda/internal/repository"
	"github.com/hitoshi/qanda/internal/richtext"
	"github.com/hitoshi/qanda/internal/security"
	"github.com/hitoshi/qanda/internal/tag"
	"github.com/hitoshi/qanda/internal/user"
	"github.com/hitoshi/qanda/internal/vote"
)

// services はserveとseedで共有するドメインサービス群。
type services struct {
	users      *user.Service
	questions  *question.Service
	votes      *vote.Service
	acceptance *acceptance.Manager
	tags       *tag.Resolver
}

// newServices はリポジトリからドメインサービスまでをワイヤリングする。
func newServices(db *sql.DB, cfg *config.Config, m metrics.MetricsCollector) (*services, error) {
	policy, err := acceptance.ParsePolicy(cfg.AcceptPolicy)
	if err != nil {
		return nil, fmt.Errorf("invalid accept policy: %w", err)
	}

	// リポジトリの初期化
	txm := database.NewTxManager(db)
	userRepo := repository.NewPostgresUserRepo(db)
	questionRepo := repository.NewPostgresQuestionRepo(db)
	answerRepo := repository.NewPostgresAnswerRepo(db)
	tagRepo := repository.NewPostgresTagRepo(db)
	voteRepo := repository.NewPostgresVoteRepo(db)

	// 本文のサニタイズとMarkdown変換
	renderer := richtext.NewRenderer(security.NewContentSanitizer())
	tags := tag.NewResolver(tagRepo)

	svc := &services{
		users: user.NewService(userRepo),
		questions: question.NewService(
			txm, userRepo, questionRepo, answerRepo, tags, renderer, m,
			question.Options{
				MaxPageSize:      cfg.MaxPageSize,
				SearchMaxResults: cfg.SearchMaxResults,
			},
		),
		votes:      vote.NewService(txm, vote.NewLedger(voteRepo), userRepo, m),
		acceptance: acceptance.NewManager(txm, questionRepo, answerRepo, policy, m),
		tags:       tags,
	}
	return svc, nil
}
