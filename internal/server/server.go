package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sw33tLie/biliguard/internal/utils"
	"github.com/sw33tLie/biliguard/pkg/enrich"
	"github.com/sw33tLie/biliguard/pkg/storage"
)

// Server exposes an enrich.Service over HTTP so an enrich.Remote elsewhere
// can drive it. DB is optional; without it the history routes answer 404.
type Server struct {
	Svc      enrich.Service
	DB       *storage.DB
	Username string
	Password string
}

func New(svc enrich.Service, db *storage.DB, user, pass string) *Server {
	return &Server{
		Svc:      svc,
		DB:       db,
		Username: user,
		Password: pass,
	}
}

// Handler builds the router. Every /api route sits behind basic auth when
// credentials are configured.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, "ok")
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.basicAuth)

		r.Get("/blacklist", s.handleBlacklist)
		r.Get("/users/{uid}", s.handleUserInfo)
		r.Get("/users/{uid}/status", s.handleStatus)
		r.Post("/users/{uid}/relation", s.handleRelation)
		r.Get("/videos/{bvid}", s.handleVideo)

		r.Get("/stats", s.handleStats)
		r.Get("/changes", s.handleChanges)
	})
	return r
}

func (s *Server) Start(addr string) error {
	utils.Log.Infof("Starting server on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(s.Username)) != 1 ||
			subtle.ConstantTimeCompare([]byte(pass), []byte(s.Password)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
