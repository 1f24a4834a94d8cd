package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/qanda/internal/model"
	"github.com/hitoshi/qanda/internal/question"
	"github.com/hitoshi/qanda/internal/richtext"
	"github.com/hitoshi/qanda/internal/user"
)

// seedUserSyncer はシード投入に必要なユーザー操作。
type seedUserSyncer interface {
	Sync(ctx context.Context, in user.SyncInput) (*model.User, error)
}

// seedQuestionWriter はシード投入に必要な質問・回答操作。
type seedQuestionWriter interface {
	CreateQuestion(ctx context.Context, in question.CreateQuestionInput) (*model.QuestionAggregate, error)
	CreateAnswer(ctx context.Context, questionID int64, in question.CreateAnswerInput) (*model.AnswerAggregate, error)
	ListQuestionsByAuthor(ctx context.Context, userID string) ([]*model.QuestionAggregate, error)
}

// seedVoter はシード投入に必要な投票操作。
type seedVoter interface {
	Cast(ctx context.Context, target model.VoteTarget, itemID int64, userID string, voteType model.VoteType) (int, error)
}

// seedAcceptor はシード投入に必要な回答採用操作。
type seedAcceptor interface {
	AcceptAnswer(ctx context.Context, answerID int64, actorID string) (*model.Answer, error)
}

type seedAnswer struct {
	authorID string
	content  string
	votes    map[string]model.VoteType
	accepted bool
}

type seedQuestion struct {
	authorID string
	title    string
	content  string
	tags     []string
	votes    map[string]model.VoteType
	answers  []seedAnswer
}

var seedUsers = []user.SyncInput{
	{ID: "user_dummy_1", Email: "john.doe@example.com", FirstName: "John", LastName: "Doe"},
	{ID: "user_dummy_2", Email: "jane.smith@example.com", FirstName: "Jane", LastName: "Smith"},
	{ID: "user_dummy_3", Email: "bob.wilson@example.com", FirstName: "Bob", LastName: "Wilson"},
}

var seedQuestions = []seedQuestion{
	{
		authorID: "user_dummy_1",
		title:    "How should I protect routes in a React app?",
		content:  "I'm adding sign-in to a React app through an external identity provider. How do I keep signed-out users away from private pages?",
		tags:     []string{"javascript", "react"},
		votes:    map[string]model.VoteType{"user_dummy_2": model.VoteUp, "user_dummy_3": model.VoteUp},
		answers: []seedAnswer{
			{
				authorID: "user_dummy_2",
				content:  "Wrap the private routes in a component that checks the session:\n\n1. Read the session from the provider hook\n2. Redirect to `/sign-in` when it is missing\n3. Render the children otherwise",
				votes:    map[string]model.VoteType{"user_dummy_1": model.VoteUp},
				accepted: true,
			},
		},
	},
	{
		authorID: "user_dummy_2",
		title:    "Which state management library fits a large React application?",
		content:  "State is getting hard to share across components. Should I pick Redux, Zustand or plain Context?",
		tags:     []string{"javascript", "react"},
		votes:    map[string]model.VoteType{"user_dummy_1": model.VoteUp},
		answers: []seedAnswer{
			{
				authorID: "user_dummy_3",
				content:  "Zustand is a good default:\n\n- small API\n- good TypeScript support\n- no provider boilerplate\n\nContext re-renders every consumer, which hurts in large trees.",
			},
		},
	},
	{
		authorID: "user_dummy_3",
		title:    "What do I need before deploying a Node.js app?",
		content:  "My Node.js service works locally. What should I set up before running it in production?",
		tags:     []string{"nodejs"},
		answers: []seedAnswer{
			{
				authorID: "user_dummy_1",
				content:  "**Checklist**\n\n- secrets in environment variables\n- structured logging\n- a health check endpoint\n- a process supervisor",
				votes:    map[string]model.VoteType{"user_dummy_2": model.VoteUp, "user_dummy_3": model.VoteDown},
			},
		},
	},
	{
		authorID: "user_dummy_1",
		title:    "When is TypeScript worth it over JavaScript?",
		content:  "Starting a new project. What does TypeScript buy me and what does it cost?",
		tags:     []string{"javascript", "typescript"},
		votes:    map[string]model.VoteType{"user_dummy_3": model.VoteDown},
	},
	{
		authorID: "user_dummy_2",
		title:    "How can I find slow PostgreSQL queries?",
		content:  "Pages get slower as tables grow. How do I find the slow queries and fix them?",
		tags:     []string{"database"},
		answers: []seedAnswer{
			{
				authorID: "user_dummy_3",
				content:  "1. Enable `pg_stat_statements`\n2. Run `EXPLAIN ANALYZE` on the worst offenders\n3. Add indexes for the filtered columns\n4. Select only the columns you need",
			},
		},
	},
}

// Seeder はデモ用データをサービス経由で投入する。
type Seeder struct {
	users     seedUserSyncer
	questions seedQuestionWriter
	votes     seedVoter
	acceptor  seedAcceptor
}

// NewSeeder はSeederを生成する。
func NewSeeder(users seedUserSyncer, questions seedQuestionWriter, votes seedVoter, acceptor seedAcceptor) *Seeder {
	return &Seeder{users: users, questions: questions, votes: votes, acceptor: acceptor}
}

// Seed はデモ用のユーザー・質問・回答・投票を投入する。
// ユーザーは毎回同期し、質問はデモユーザーの質問が1件もない場合のみ作成する。
func (s *Seeder) Seed(ctx context.Context) error {
	for _, u := range seedUsers {
		if _, err := s.users.Sync(ctx, u); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.ID, err)
		}
	}

	existing, err := s.questions.ListQuestionsByAuthor(ctx, seedUsers[0].ID)
	if err != nil {
		return fmt.Errorf("failed to check seeded questions: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("seed data already present, skipping questions",
			slog.Int("existing_questions", len(existing)),
		)
		return nil
	}

	var answerCount int
	for _, sq := range seedQuestions {
		q, err := s.questions.CreateQuestion(ctx, question.CreateQuestionInput{
			Title:         sq.title,
			Content:       sq.content,
			ContentFormat: richtext.FormatMarkdown,
			AuthorID:      sq.authorID,
			Tags:          sq.tags,
		})
		if err != nil {
			return fmt.Errorf("failed to seed question %q: %w", sq.title, err)
		}
		if err := s.castVotes(ctx, model.VoteTargetQuestion, q.ID, sq.votes); err != nil {
			return err
		}

		for _, sa := range sq.answers {
			a, err := s.questions.CreateAnswer(ctx, q.ID, question.CreateAnswerInput{
				Content:       sa.content,
				ContentFormat: richtext.FormatMarkdown,
				AuthorID:      sa.authorID,
			})
			if err != nil {
				return fmt.Errorf("failed to seed answer for question %d: %w", q.ID, err)
			}
			answerCount++

			if err := s.castVotes(ctx, model.VoteTargetAnswer, a.ID, sa.votes); err != nil {
				return err
			}
			if sa.accepted {
				if _, err := s.acceptor.AcceptAnswer(ctx, a.ID, sq.authorID); err != nil {
					return fmt.Errorf("failed to accept seeded answer %d: %w", a.ID, err)
				}
			}
		}
	}

	slog.Info("seed data created",
		slog.Int("users", len(seedUsers)),
		slog.Int("questions", len(seedQuestions)),
		slog.Int("answers", answerCount),
	)
	return nil
}

func (s *Seeder) castVotes(ctx context.Context, target model.VoteTarget, itemID int64, votes map[string]model.VoteType) error {
	for userID, voteType := range votes {
		if _, err := s.votes.Cast(ctx, target, itemID, userID, voteType); err != nil {
			return fmt.Errorf("failed to seed %s vote on %d: %w", target, itemID, err)
		}
	}
	return nil
}
