package routes

import (
	"net/http"

	_ "github.com/Dosada05/karting-league/docs"
	"github.com/Dosada05/karting-league/handlers"
	"github.com/Dosada05/karting-league/middleware"
	"github.com/Dosada05/karting-league/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	TieredLeague *handlers.TieredLeagueHandler
	Assignment   *handlers.AssignmentHandler
	Shuffle      *handlers.ShuffleHandler
	Notification *handlers.NotificationHandler
	WebSocket    *handlers.WebSocketHandler
}

type Options struct {
	JWTSecretKey   string
	AllowedOrigins []string
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	authenticate := middleware.Authenticate(opts.JWTSecretKey)
	organizerOnly := middleware.Authorize(models.RoleAdmin, models.RoleOrganizer)

	// Browsers cannot set headers on a websocket handshake, so the token may
	// also come from ?token=.
	router.With(authenticate).Get("/ws/notifications", h.WebSocket.ServeNotifications)

	router.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/leagues/{leagueID}/tiered-leagues", h.TieredLeague.ListByLeague)

		r.Route("/tiered-leagues", func(r chi.Router) {
			r.With(organizerOnly).Post("/", h.TieredLeague.CreateTieredLeague)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.TieredLeague.GetTieredLeague)
				r.Get("/tier-names", h.TieredLeague.TierNames)
				r.Get("/standings", h.TieredLeague.Standings)
				r.Get("/assignments", h.TieredLeague.ListAssignments)
				r.Get("/drivers/{profileID}/tier", h.TieredLeague.ActiveTier)
				r.Get("/movements", h.Shuffle.ListMovements)
				r.Get("/shuffle/preview", h.Shuffle.Preview)

				r.Group(func(r chi.Router) {
					r.Use(organizerOnly)
					r.Patch("/", h.TieredLeague.UpdateTieredLeague)
					r.Delete("/", h.TieredLeague.DeleteTieredLeague)
					r.Post("/assignments", h.Assignment.AssignDriver)
					r.Delete("/assignments/{profileID}", h.Assignment.RemoveDriver)
					r.Post("/move-driver", h.Assignment.MoveDriver)
					r.Post("/shuffle", h.Shuffle.Shuffle)
				})
			})
		})

		r.With(organizerOnly).Post("/competitions/{competitionID}/race-completed", h.Shuffle.RaceCompleted)

		r.Route("/me/tier-notifications", func(r chi.Router) {
			r.Get("/", h.Notification.ListMyNotifications)
			r.Post("/read-all", h.Notification.MarkAllRead)
			r.Post("/{notificationID}/mark-read", h.Notification.MarkRead)
		})
	})
}
