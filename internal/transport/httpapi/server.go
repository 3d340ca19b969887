package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"

	"apptbook/internal/domain"
	"apptbook/internal/schedule"
	"apptbook/internal/service/appointments"
	"apptbook/internal/store"
	"apptbook/internal/timeutil"
)

// AppointmentService is the slice of the appointment service the HTTP layer
// depends on.
type AppointmentService interface {
	Schedule(ctx context.Context, in appointments.SaveInput) (domain.Appointment, schedule.Result, error)
	Reschedule(ctx context.Context, id int64, in appointments.SaveInput) (domain.Appointment, schedule.Result, error)
	Validate(ctx context.Context, in appointments.SaveInput, excludeID int64) (schedule.Result, error)
	Get(ctx context.Context, id int64) (domain.Appointment, error)
	Cancel(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Appointment, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Appointment, error)
	ListByDay(ctx context.Context, year int, month time.Month, day int, loc *time.Location) ([]domain.Appointment, error)
	TypeCountsByMonth(ctx context.Context) ([]store.TypeCount, error)
	CountsByCustomer(ctx context.Context) ([]store.CustomerCount, error)
	UserSchedule(ctx context.Context) ([]domain.Appointment, error)
}

type Options struct {
	RequestTimeout     time.Duration
	RateLimitPerMinute int
}

type Server struct {
	svc   AppointmentService
	hours schedule.BusinessHours
	// conv supplies the default local zone for naive timestamps and day
	// parameters when a request carries no time_zone of its own.
	conv   *timeutil.Converter
	opts   Options
	logger *slog.Logger
}

func NewServer(svc AppointmentService, hours schedule.BusinessHours, conv *timeutil.Converter, opts Options, logger *slog.Logger) *Server {
	if conv == nil {
		conv = timeutil.NewConverter(nil, hours.Zone)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, hours: hours, conv: conv, opts: opts, logger: logger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	if s.opts.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(s.opts.RateLimitPerMinute, time.Minute))
	}
	if s.opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/appointments", func(r chi.Router) {
			r.Post("/", s.handleSchedule)
			r.Get("/", s.handleListByDay)
			r.Post("/validate", s.handleValidate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGet)
				r.Put("/", s.handleReschedule)
				r.Delete("/", s.handleCancel)
			})
		})
		r.Get("/users/{id}/appointments", s.handleListByUser)
		r.Get("/customers/{id}/appointments", s.handleListByCustomer)
		r.Get("/business-window", s.handleBusinessWindow)
		r.Route("/reports", func(r chi.Router) {
			r.Get("/appointment-types", s.handleTypeCounts)
			r.Get("/customer-appointments", s.handleCustomerCounts)
			r.Get("/user-schedule", s.handleUserSchedule)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

const requestIDHeader = "X-Request-Id"

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
	})
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			slog.String("request_id", RequestIDFromContext(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	})
}
