package padayon

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Eka2r/Padayon/internal/cache"
	"github.com/Eka2r/Padayon/internal/config"
	"github.com/Eka2r/Padayon/internal/http/middlewarectx"
	"github.com/Eka2r/Padayon/internal/lib/jwt"
	"github.com/Eka2r/Padayon/internal/lib/metrics"
	"github.com/Eka2r/Padayon/internal/live"
	"github.com/Eka2r/Padayon/internal/models"
	"github.com/Eka2r/Padayon/internal/services/directory"
	"github.com/Eka2r/Padayon/internal/services/janitor"
	"github.com/Eka2r/Padayon/internal/services/mutation"
	"github.com/Eka2r/Padayon/internal/services/notice"
	"github.com/Eka2r/Padayon/internal/services/session"
	"github.com/Eka2r/Padayon/internal/services/suggestion"
	"github.com/Eka2r/Padayon/internal/view"
)

// tokenIssuer is the iss claim of session tokens.
const tokenIssuer = "padayon"

// Repository is everything the service needs from storage.
type Repository interface {
	session.UserRepository
	mutation.Repository
	ListPosts(ctx context.Context, appID string) ([]models.Post, error)
	ListMessages(ctx context.Context, appID string) ([]models.Message, error)
	Ping(ctx context.Context) error
}

// Core is the wired service graph without process resources. It is what
// the HTTP router serves and what tests drive end to end.
type Core struct {
	Handler     http.Handler
	Hub         *live.Hub
	Posts       *live.Feed[models.Post]
	Messages    *live.Feed[models.Message]
	Sessions    *session.Manager
	Mutations   *mutation.Service
	Suggestions *suggestion.Service
	Views       *view.Router
	Limiters    *middlewarectx.Limiters
	Janitor     *janitor.Janitor
	Metrics     *metrics.Metrics
}

// CoreDeps are the external resources Core is built on. Events may be nil,
// then mutations refresh the live hub directly.
type CoreDeps struct {
	Repo      Repository
	Cache     *cache.Cache
	Generator suggestion.Generator
	Events    mutation.Events
	Registry  *prometheus.Registry
	Health    map[string]Pinger
}

// Pinger is a dependency reported by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewCore wires services, live feeds and routes.
func NewCore(cfg *config.Config, deps CoreDeps, log *slog.Logger) (*Core, error) {
	const op = "padayon.NewCore"

	catalog, err := view.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	views := view.NewRouter(catalog, cfg.Theme, cfg.Locale)
	locale := views.Locale()
	m := metrics.New(deps.Registry)

	transport := live.NewRedisTransport(deps.Cache)
	posts := live.NewFeed(cfg.AppID, live.Posts,
		func(ctx context.Context) ([]models.Post, error) { return deps.Repo.ListPosts(ctx, cfg.AppID) },
		live.PostsNewestFirst, transport, deps.Cache, log, m.LiveSubscriptions.WithLabelValues(live.Posts))
	messages := live.NewFeed(cfg.AppID, live.Messages,
		func(ctx context.Context) ([]models.Message, error) { return deps.Repo.ListMessages(ctx, cfg.AppID) },
		live.MessagesOldestFirst, transport, deps.Cache, log, m.LiveSubscriptions.WithLabelValues(live.Messages))
	hub := live.NewHub(posts, messages)

	events := deps.Events
	if events == nil {
		events = hub
	}

	board := notice.NewBoard(deps.Cache, log)
	sessions := session.NewManager(
		deps.Repo,
		jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL, tokenIssuer),
		deps.Cache,
		board,
		locale.SessionMessages(),
		log,
	)
	sessions.Watch(func(ch session.Change) {
		m.SessionChanges.WithLabelValues(ch.Kind, string(ch.Session.Entitlement)).Inc()
	})

	mutations := mutation.NewService(deps.Repo, events, board, mutation.Options{
		AppID:           cfg.AppID,
		NoticeTTL:       cfg.NoticeTTL,
		AtomicReactions: cfg.AtomicReactions,
		Messages:        locale.MutationMessages(),
		Counter:         m.Mutations,
	}, log)

	suggestions := suggestion.NewService(deps.Generator, deps.Cache, board, suggestion.Options{
		Messages:   locale.SuggestionMessages(),
		NoticeTTL:  cfg.NoticeTTL,
		HistoryTTL: cfg.HistoryTTL,
		Counter:    m.AIRequests,
	}, log)

	limiters := middlewarectx.NewLimiters(cfg.RateLimit, cfg.RateBurst)
	idle := cfg.Janitor.IdleTTL
	jan, err := janitor.New(cfg.Janitor.Schedule, log,
		janitor.Job{Name: "limiters", Sweep: func() int { return limiters.Sweep(idle) }},
		janitor.Job{Name: "views", Sweep: func() int { return views.Forget(idle) }},
		janitor.Job{Name: "chat_locks", Sweep: suggestions.Sweep},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c := &Core{
		Hub:         hub,
		Posts:       posts,
		Messages:    messages,
		Sessions:    sessions,
		Mutations:   mutations,
		Suggestions: suggestions,
		Views:       views,
		Limiters:    limiters,
		Janitor:     jan,
		Metrics:     m,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, log, cfg, c, routeDeps{
		board:     board,
		directory: directory.New(),
		registry:  deps.Registry,
		health:    deps.Health,
	})
	c.Handler = router
	return c, nil
}
