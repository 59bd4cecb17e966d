// Package padayon собирает приложение: хранилище, кэш, брокер событий,
// сервисы и HTTP-маршруты.
package padayon

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Eka2r/Padayon/internal/config"
	"github.com/Eka2r/Padayon/internal/http/handlers/ai/affirmation"
	"github.com/Eka2r/Padayon/internal/http/handlers/ai/chat"
	"github.com/Eka2r/Padayon/internal/http/handlers/ai/history"
	"github.com/Eka2r/Padayon/internal/http/handlers/ai/reset"
	"github.com/Eka2r/Padayon/internal/http/handlers/ai/starter"
	"github.com/Eka2r/Padayon/internal/http/handlers/health"
	messagecreate "github.com/Eka2r/Padayon/internal/http/handlers/messages/create"
	noticedismiss "github.com/Eka2r/Padayon/internal/http/handlers/notices/dismiss"
	noticelist "github.com/Eka2r/Padayon/internal/http/handlers/notices/list"
	postcreate "github.com/Eka2r/Padayon/internal/http/handlers/posts/create"
	"github.com/Eka2r/Padayon/internal/http/handlers/posts/react"
	"github.com/Eka2r/Padayon/internal/http/handlers/posts/remove"
	professionalget "github.com/Eka2r/Padayon/internal/http/handlers/professionals/get"
	professionallist "github.com/Eka2r/Padayon/internal/http/handlers/professionals/list"
	sessioncurrent "github.com/Eka2r/Padayon/internal/http/handlers/session/current"
	"github.com/Eka2r/Padayon/internal/http/handlers/session/signin"
	"github.com/Eka2r/Padayon/internal/http/handlers/session/signout"
	"github.com/Eka2r/Padayon/internal/http/handlers/session/signup"
	"github.com/Eka2r/Padayon/internal/http/handlers/session/start"
	"github.com/Eka2r/Padayon/internal/http/handlers/stream"
	viewcurrent "github.com/Eka2r/Padayon/internal/http/handlers/view/current"
	"github.com/Eka2r/Padayon/internal/http/handlers/view/navigate"
	"github.com/Eka2r/Padayon/internal/http/middlewarectx"
	"github.com/Eka2r/Padayon/internal/models"
	"github.com/Eka2r/Padayon/internal/services/directory"
	"github.com/Eka2r/Padayon/internal/services/notice"
	"github.com/Eka2r/Padayon/internal/view"
)

type routeDeps struct {
	board     *notice.Board
	directory *directory.Directory
	registry  *prometheus.Registry
	health    map[string]Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, c *Core, d routeDeps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middlewarectx.MetricsMiddleware(c.Metrics.HTTPDuration),
	)

	loadFailed := c.Views.Locale().Live.LoadFailed
	postsStream := stream.New[models.Post](logger, c.Posts,
		func(items []models.Post, now time.Time) any { return view.Posts(items, now) }, loadFailed)
	messagesStream := stream.New[models.Message](logger, c.Messages,
		func(items []models.Message, now time.Time) any { return view.Messages(items, now) }, loadFailed)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(c.Limiters, logger))
			r.Post("/session", start.New(logger, c.Sessions, cfg.InitialAuthToken).ServeHTTP)
			r.Get("/professionals", professionallist.New(d.directory).ServeHTTP)
			r.Get("/professionals/{id}", professionalget.New(logger, d.directory).ServeHTTP)
		})

		// Группа с сессией по bearer-токену
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.SessionMiddleware(c.Sessions, logger))

			// Потоки живут долго и не расходуют лимит запросов.
			r.Get("/posts/stream", postsStream.ServeHTTP)
			r.Get("/messages/stream", messagesStream.ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RateLimitMiddleware(c.Limiters, logger))

				r.Get("/session", sessioncurrent.New().ServeHTTP)
				r.Post("/session/signup", signup.New(logger, c.Sessions).ServeHTTP)
				r.Post("/session/signin", signin.New(logger, c.Sessions).ServeHTTP)
				r.Post("/session/signout", signout.New(logger, c.Sessions).ServeHTTP)

				r.Post("/posts", postcreate.New(logger, c.Mutations).ServeHTTP)
				r.Post("/posts/{id}/reactions", react.New(logger, c.Mutations).ServeHTTP)
				r.Delete("/posts/{id}", remove.New(logger, c.Mutations).ServeHTTP)
				r.Post("/messages", messagecreate.New(logger, c.Mutations).ServeHTTP)

				r.Get("/ai/chat", history.New(logger, c.Suggestions).ServeHTTP)
				r.Post("/ai/chat", chat.New(logger, c.Suggestions).ServeHTTP)
				r.Delete("/ai/chat", reset.New(logger, c.Suggestions).ServeHTTP)
				r.Post("/ai/affirmation", affirmation.New(logger, c.Suggestions).ServeHTTP)
				r.Post("/ai/starter", starter.New(logger, c.Suggestions).ServeHTTP)

				r.Get("/view", viewcurrent.New(c.Views).ServeHTTP)
				r.Put("/view", navigate.New(logger, c.Views).ServeHTTP)

				r.Get("/notices", noticelist.New(logger, d.board).ServeHTTP)
				r.Delete("/notices/{kind}", noticedismiss.New(logger, d.board).ServeHTTP)
			})
		})
	})

	components := make(map[string]health.Pinger, len(d.health))
	for name, p := range d.health {
		components[name] = p
	}
	r.Get("/health", health.New(logger, cfg.Version, components).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
