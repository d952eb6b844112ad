package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/dowdarts/CGC-Tournament-Manager-sub000/docs"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/handlers"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/middleware"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/services"
)

type Options struct {
	JWTSecret          []byte
	CORSAllowedOrigins []string
	ResultRateLimit    int
	ResultRateWindow   time.Duration
}

type Handlers struct {
	Auth       *handlers.AuthHandler
	Tournament *handlers.TournamentHandler
	Group      *handlers.GroupHandler
	Knockout   *handlers.KnockoutHandler
	WebSocket  *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.JWTSecret)
	organizerOnly := middleware.Authorize(services.RoleOrganizer)
	resultLimit := middleware.RateLimit(opts.ResultRateLimit, opts.ResultRateWindow)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	router.Post("/auth/login", h.Auth.Login)
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.ListHandler)
		r.With(authenticate, organizerOnly).Post("/", h.Tournament.CreateHandler)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", h.Tournament.GetByIDHandler)
			r.Get("/fixtures", h.Group.ListFixturesHandler)
			r.Get("/standings", h.Group.StandingsHandler)
			r.Get("/bracket", h.Knockout.GetBracketHandler)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Use(organizerOnly)

				r.Post("/entrants", h.Tournament.RegisterEntrantsHandler)
				r.Post("/groups", h.Group.GenerateGroupsHandler)
				r.Post("/fixtures", h.Group.GenerateFixturesHandler)
				r.Post("/bracket", h.Knockout.GenerateBracketHandler)

				r.With(resultLimit).Put("/fixtures/{fixtureID}/result", h.Group.RecordFixtureResultHandler)
				r.With(resultLimit).Put("/bracket/rounds/{round}/matches/{match}/result", h.Knockout.RecordResultHandler)
			})
		})
	})
}
