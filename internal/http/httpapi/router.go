package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

// NewRouter assembles the public HTTP surface. The country lookup is optional;
// when nil the locale middleware falls back to headers only.
func NewRouter(app *handlers.App, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.AllowedOrigins),
		middleware.Locale("en-IN", lookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/docs", app.OpenAPIDocs)

	r.Post("/chat", app.Chat)
	r.Post("/voice-chat", app.VoiceChat)

	r.Post("/generate-video", app.GenerateVideo)
	r.Get("/video-status/{id}", app.VideoStatus)

	// Generated videos and site imagery are served straight off MediaDir.
	fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(app.Config.MediaDir)))
	r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
		fileServer.ServeHTTP(w, req)
	})

	return r
}
