package http

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"kakeibo/internal/auth"
	"kakeibo/internal/ledger"
	appLog "kakeibo/internal/log"
	"kakeibo/internal/middleware/ratelimit"
	"kakeibo/internal/middleware/security"
	"kakeibo/internal/middleware/trace"
	"kakeibo/internal/services"
	appweb "kakeibo/web"
)

// Options are the collaborators and settings of a Server.
type Options struct {
	Addr    string
	Gate    *auth.Gate
	Service *services.TransactionService
	Ledgers ledger.Opener
	Health  ledger.Pinger
	Logger  *appLog.Logger

	// RateLimitPerMinute bounds POST requests per client IP; 0 disables it.
	RateLimitPerMinute int
	// TrustedProxies are CIDRs whose X-Forwarded-For is honored besides loopback.
	TrustedProxies []string
	// Clock is the time source for guest entries; nil means time.Now.
	Clock func() time.Time
}

type Server struct {
	http.Server

	templates *template.Template
	gate      *auth.Gate
	service   *services.TransactionService
	ledgers   ledger.Opener
	health    ledger.Pinger
	logger    *appLog.Logger
	clock     func() time.Time

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	started  time.Time
	recorded int64

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires the routes.
func NewServer(opts Options) (*Server, error) {
	if opts.Gate == nil || opts.Service == nil || opts.Ledgers == nil {
		return nil, errors.New("gate, service and ledgers are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = appLog.New(appLog.DefaultConfig())
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, err
	}

	s := &Server{
		templates: t,
		gate:      opts.Gate,
		service:   opts.Service,
		ledgers:   opts.Ledgers,
		health:    opts.Health,
		logger:    logger.WithComponent(appLog.ComponentHTTP),
		clock:     opts.Clock,
		detector:  security.NewDetector(),
		started:   time.Now(),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	page := func(h http.HandlerFunc) http.Handler { return security.NoStore(h) }

	mux.Handle("GET /{$}", page(s.handleIndex))
	mux.Handle("POST /add", page(s.handleAdd))
	mux.Handle("GET /history", page(s.handleHistory))
	mux.Handle("GET /login", page(s.handleLoginPage))
	mux.Handle("POST /login", page(s.handleLogin))
	mux.Handle("GET /logout", page(s.handleLogout))
	mux.Handle("GET /api/summary", page(s.handleAPISummary))
	mux.Handle("GET /api/history", page(s.handleAPIHistory))
	mux.Handle("GET /export.csv", page(s.handleExportCSV))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	var h http.Handler = mux
	if opts.RateLimitPerMinute > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			Methods:           []string{http.MethodPost},
		})
		h = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(h)
	}
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// Shutdown stops the limiter and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appLog.FromContext(ctx).WithComponent(appLog.ComponentRateLimit).
		WarnContext(ctx, "Rate limit exceeded",
			appLog.FieldClientIP, s.detector.ExtractClientIP(r),
			appLog.FieldMethod, r.Method,
			appLog.FieldPath, r.URL.Path)

	if r.URL.Path == "/add" {
		AddFailure(http.StatusTooManyRequests, MsgRateLimited).Write(w)
		return
	}
	http.Error(w, MsgRateLimited, http.StatusTooManyRequests)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		ctx := r.Context()
		appLog.FromContext(ctx).WithComponent(appLog.ComponentTemplate).
			ErrorContext(ctx, "Template execution failed",
				appLog.FieldOperation, appLog.OpRender,
				"template", name,
				appLog.FieldError, err)
	}
}

func (s *Server) countRecorded() {
	atomic.AddInt64(&s.recorded, 1)
}
