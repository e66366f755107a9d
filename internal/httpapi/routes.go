package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/veto-bracket-backend/internal/hub"
	"github.com/DoyleJ11/veto-bracket-backend/internal/logging"
	"github.com/DoyleJ11/veto-bracket-backend/internal/metrics"
	"github.com/DoyleJ11/veto-bracket-backend/internal/tournament"
	"github.com/DoyleJ11/veto-bracket-backend/internal/ws"
)

type Deps struct {
	Hub         *hub.Hub
	Tournaments *tournament.Registry
	Metrics     *metrics.Recorder // nil disables /metrics
	Logger      *zap.Logger
	// HashPasswords stores veto passwords as bcrypt hashes.
	HashPasswords bool
}

func SetupRoutes(d Deps) http.Handler {
	d.Logger = logging.OrNop(d.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(d.Hub, d.Logger))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/vetos", func(r chi.Router) {
		r.Post("/", CreateVeto(d))
		r.Get("/{seriesId}", GetVeto(d))
		r.Delete("/{seriesId}", DeleteVeto(d))
	})

	r.Route("/tournaments/{tournamentId}", func(r chi.Router) {
		r.Put("/matches", ReplaceMatches(d))
		r.Get("/brackets", GetBrackets(d))
		r.Post("/matches/{matchId}/result", ReportResult(d))
	})
	return r
}
