package api

import (
	"net/http"
	"time"

	handlers "finance/src/api/handlers"
	"finance/src/config"
	"finance/src/sessions"
	"finance/src/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router   *chi.Mux
	Handler  *handlers.Handler
	Sessions *sessions.Manager
	Logger   *logrus.Logger
}

func NewServer(handler *handlers.Handler, logger *logrus.Logger) *Server {
	server := &Server{
		Router:   chi.NewRouter(),
		Handler:  handler,
		Sessions: handler.Sessions,
		Logger:   logger,
	}
	server.InitRoutes()
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Use(middleware.RequestID)
	s.Router.Use(middleware.RealIP)
	s.Router.Use(RequestLogger(s.Logger))
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(middleware.NoCache)

	s.Router.Get("/alive", handlers.Healthcheck)

	s.Router.Group(func(r chi.Router) {
		r.Use(s.Sessions.Middleware)

		r.Get("/login", s.Handler.GetLogin)
		r.Post("/login", s.Handler.PostLogin)
		r.Get("/logout", s.Handler.GetLogout)
		r.Get("/register", s.Handler.GetRegister)
		r.Post("/register", s.Handler.PostRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.Handler.RequireLogin)

			r.Get("/", s.Handler.GetPortfolio)
			r.Get("/history", s.Handler.GetHistory)
			r.Get("/buy", s.Handler.GetBuy)
			r.Post("/buy", s.Handler.PostBuy)
			r.Get("/sell", s.Handler.GetSell)
			r.Post("/sell", s.Handler.PostSell)
			r.Get("/add_cash", s.Handler.GetAddCash)
			r.Post("/add_cash", s.Handler.PostAddCash)
			r.Get("/quote", s.Handler.GetQuote)
			r.Post("/quote", s.Handler.PostQuote)
		})
	})
}

// RequestLogger stores a request scoped logrus entry in the context and logs
// every completed request.
func RequestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			entry := logger.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"remote":     r.RemoteAddr,
			})
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(utils.WithLogger(r.Context(), entry)))

			entry.WithFields(logrus.Fields{
				"status":   ww.Status(),
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start).String(),
			}).Info("request completed")
		})
	}
}

func NewHTTPServer(server *Server, cfg *config.Config) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + cfg.Service.Port,
		ReadTimeout:  cfg.Service.ReadTimeout,
		WriteTimeout: cfg.Service.WriteTimeout,
		Handler:      server,
	}
	return httpServer
}
