package httpadapter

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ad-campaigns/internal/core/port"
	"ad-campaigns/internal/telemetry"
)

// Services bundles the use cases served over HTTP.
type Services struct {
	Campaigns port.CampaignUseCase
	Recorder  port.MetricsRecorder
	Analytics port.AnalyticsUseCase
	Payments  port.PaymentUseCase
}

// Options configures the router. A nil Gatherer leaves /metrics
// unregistered.
type Options struct {
	CORSOrigins []string
	Metrics     *telemetry.Metrics
	Gatherer    prometheus.Gatherer
	// Now is the clock used by /health. Defaults to time.Now.
	Now func() time.Time
}

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP. Routes are registered on a chi.Router for convenient method
// handling.
type Handler struct {
	svc     Services
	logger  *slog.Logger
	metrics *telemetry.Metrics
	now     func() time.Time
	router  chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(svc Services, logger *slog.Logger, opts Options) *Handler {
	h := &Handler{svc: svc, logger: logger, metrics: opts.Metrics, now: opts.Now}
	if h.now == nil {
		h.now = time.Now
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.observe)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", h.handleHealth)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/ads", func(r chi.Router) {
			r.Get("/", h.handleListCampaigns)
			r.Post("/", h.handleCreateCampaign)
			r.Get("/{id}", h.handleGetCampaign)
			r.Put("/{id}", h.handleUpdateCampaign)
			r.Delete("/{id}", h.handleDeleteCampaign)
			r.Post("/{id}/impression", h.handleImpression)
			r.Post("/{id}/click", h.handleClick)
		})
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/campaign/{id}", h.handleCampaignAnalytics)
			r.Get("/overall", h.handleOverallAnalytics)
		})
		r.Route("/payment", func(r chi.Router) {
			r.Post("/stripe", h.handleStripePayment)
			r.Post("/paynow", h.handlePaynowPayment)
			r.Post("/paynow/webhook", h.handlePaynowWebhook)
			r.Get("/status/{campaignId}", h.handlePaymentStatus)
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// observe records request latency by route pattern and logs server errors.
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.metrics.ObserveHTTP(r.Method, route, status, time.Since(start))
		if status >= http.StatusInternalServerError {
			h.logger.Warn("request failed",
				slog.String("method", r.Method),
				slog.String("route", route),
				slog.Int("status", status),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		}
	})
}
