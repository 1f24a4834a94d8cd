package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/qanda/internal/metrics"
	"github.com/hitoshi/qanda/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Metrics           metrics.MetricsCollector
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 運用エンドポイント
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// 質問・回答
	QuestionService QuestionServiceInterface
	DefaultPageSize int

	// 投票
	VoteService VoteServiceInterface

	// 回答採用
	AcceptanceService AcceptanceServiceInterface

	// タグ
	TagService TagServiceInterface

	// ユーザー
	UserService UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RealIP → RequestID → Recovery → Logging → Metrics → SecurityHeaders → CORS
//	→ RateLimit(General, /api のみ) → RateLimit(Vote, 投票のみ)
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.Nop{}
	}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(m))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	questionHandler := NewQuestionHandler(deps.QuestionService, deps.DefaultPageSize)
	voteHandler := NewVoteHandler(deps.VoteService)
	answerHandler := NewAnswerHandler(deps.AcceptanceService)
	tagHandler := NewTagHandler(deps.TagService)
	userHandler := NewUserHandler(deps.UserService, deps.QuestionService)

	// --- 運用エンドポイント ---
	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker))
	}
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- API ---
	r.Route("/api", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}
		voteLimit := func(next http.Handler) http.Handler { return next }
		if deps.RateLimiter != nil {
			voteLimit = deps.RateLimiter.VoteMiddleware()
		}

		// 質問・回答
		r.Route("/questions", func(r chi.Router) {
			r.Get("/", questionHandler.ListQuestions)
			r.Post("/", questionHandler.CreateQuestion)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", questionHandler.GetQuestion)
				r.Get("/answers", questionHandler.ListAnswers)
				r.Post("/answers", questionHandler.CreateAnswer)
				r.With(voteLimit).Post("/vote", voteHandler.VoteQuestion)
			})
		})

		// 回答への操作
		r.Route("/answers/{id}", func(r chi.Router) {
			r.With(voteLimit).Post("/vote", voteHandler.VoteAnswer)
			r.Post("/accept", answerHandler.AcceptAnswer)
		})

		r.Get("/tags", tagHandler.ListTags)
		r.Get("/search", questionHandler.Search)

		// ユーザー
		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.SyncUser)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.GetUser)
				r.Get("/statistics", userHandler.GetStatistics)
				r.Get("/questions", userHandler.ListQuestions)
				r.Get("/answers", userHandler.ListAnswers)
			})
		})
	})

	return r
}
