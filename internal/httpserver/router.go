package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"rideshare_go/internal/config"
	"rideshare_go/internal/domain"
	"rideshare_go/internal/realtime"
	"rideshare_go/internal/security"
	"rideshare_go/internal/service"
	"rideshare_go/internal/store"
	"rideshare_go/internal/ws"

	_ "rideshare_go/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Deps are the long-lived components the router wires together.
type Deps struct {
	Config    *config.Config
	Log       logrus.FieldLogger
	Repos     *store.Repositories
	Hub       *ws.Hub
	Tokens    *security.TokenService
	Hasher    *security.PasswordHasher
	Encryptor *security.Encryptor
	Limiter   *LimiterStore
}

// NewRouter constructs the main HTTP router and wires routes, services, and middleware.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: d.Log, NoColor: true}))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Services
	limits := service.Limits{
		MaxMessageLength: cfg.MaxMessageLength,
		DefaultPageLimit: cfg.DefaultPageLimit,
		MaxPageLimit:     cfg.MaxPageLimit,
	}
	authSvc := service.NewAuthService(d.Repos.Users, d.Tokens, d.Hasher)
	userSvc := service.NewUserService(d.Repos.Users, d.Encryptor)
	rideSvc := service.NewRideService(d.Repos.Rides)
	reviewSvc := service.NewReviewService(d.Repos.Reviews)
	chatSvc := service.NewChatService(d.Repos.Users, d.Repos.Messages, d.Repos.Contacts, d.Encryptor, limits)

	engine := realtime.NewEngine(chatSvc, d.Hub, d.Log, cfg.MaxMessageLength)
	gateway := ws.NewGateway(d.Hub, d.Tokens, d.Repos.Users, engine, realtime.NewTypingNotifier(d.Hub), ws.Options{
		AllowedOrigins: cfg.CORSOrigins,
		Client: ws.ClientOptions{
			SendBuffer:      cfg.WS.SendBuffer,
			WriteTimeout:    cfg.WS.WriteTimeout,
			PongWait:        cfg.WS.PongWait,
			MaxMessageBytes: cfg.WS.MaxMessageBytes,
		},
	}, d.Log)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": cfg.AppName,
			"version": "1.0.0",
			"docs":    "/docs",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := d.Repos.DB.PingContext(r.Context()); err != nil {
			writeErrorMessage(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// Long-lived socket; kept outside the request timeout.
	r.Handle("/ws", gateway)

	requireUser := AuthMiddleware(d.Tokens, d.Repos.Users, d.Log)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(RateLimit(d.Limiter))
				r.Post("/register", handleRegister(authSvc, d.Log))
				r.Post("/login", handleLogin(authSvc, d.Log))
			})
			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Get("/me", handleMe())
				r.Put("/password", handleChangePassword(authSvc, d.Log))
				r.Post("/verify", handleVerify(userSvc, d.Log))
			})
		})

		// Postings and reviews mix public and authenticated routes.
		r.Mount("/passengers", RideRoutes(domain.RideKindPassenger, rideSvc, requireUser, d.Log))
		r.Mount("/drivers", RideRoutes(domain.RideKindDriver, rideSvc, requireUser, d.Log))
		r.Mount("/reviews", ReviewRoutes(reviewSvc, requireUser, d.Log))

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Route("/users", func(r chi.Router) {
				r.Get("/online", handleListOnlineUsers(d.Hub))
				r.Put("/me", handleUpdateProfile(userSvc, d.Log))
				r.Get("/{userID}", handleGetUser(userSvc, d.Hub, d.Log))
			})

			r.Route("/chat", func(r chi.Router) {
				r.Get("/contacts", handleContacts(engine, d.Log))
				r.Get("/messages/{userID}", handleMessages(engine, chatSvc.Limits(), d.Log))
				r.Put("/messages/read/{userID}", handleMarkRead(engine, d.Log))
				r.Get("/unread", handleUnread(chatSvc, d.Log))
			})

			r.Mount("/uploads", UploadRoutes(cfg.UploadDir, d.Log))
		})
	})

	return r
}
