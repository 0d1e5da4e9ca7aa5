package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"wallet/internal/cache"
	"wallet/internal/core"
	"wallet/internal/log"
	"wallet/internal/services"
)

// ExpenseStore is the store surface the API needs.
type ExpenseStore interface {
	ListAll() []core.Expense
	Currency() core.Currency
	Add(ctx context.Context, in core.ExpenseInput) (core.Expense, error)
	Delete(ctx context.Context, id string)
	SetCurrency(ctx context.Context, code string) core.Currency
	Subscribe(fn func(services.Snapshot))
}

var _ ExpenseStore = (*services.ExpenseStore)(nil)

type Server struct {
	http.Server
	store         ExpenseStore
	logger        *log.Logger
	requestLogger *log.RequestLogger
	rateLimiter   *rateLimiter
	metrics       securityMetrics
	now           func() time.Time
	startedAt     time.Time

	summaryCache cache.Cache[core.MonthOverview]
	cacheManager *cache.Manager
	cacheTTL     time.Duration
	cacheMu      sync.Mutex
	generation   uint64 // bumped on every store mutation, guarded by cacheMu

	shuttingDown atomic.Bool
	shutdownOnce sync.Once
}

type Option func(*Server)

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRateLimit sets the number of mutating requests a client may make per
// minute.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) { s.rateLimiter = newRateLimiter(perMinute) }
}

func WithSummaryCacheTTL(ttl time.Duration) Option {
	return func(s *Server) { s.cacheTTL = ttl }
}

// WithClock overrides time.Now, which decides the default filter month.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer wires the API routes over store and starts the background
// cleanup goroutines. Call Shutdown to stop them.
func NewServer(addr string, store ExpenseStore, opts ...Option) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		store:    store,
		logger:   log.Discard(),
		now:      time.Now,
		cacheTTL: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rateLimiter == nil {
		s.rateLimiter = newRateLimiter(60)
	}
	s.logger = s.logger.WithComponent(log.ComponentHTTP)
	s.requestLogger = log.NewRequestLogger(s.logger)
	s.startedAt = s.now()

	summaries := cache.NewLRU[core.MonthOverview](100, s.cacheTTL)
	s.summaryCache = summaries
	s.cacheManager = cache.NewManager(s.logger)
	s.cacheManager.Register(summaries)
	s.cacheManager.StartCleanup(context.Background(), 10*time.Minute)
	s.rateLimiter.start()

	// Any mutation can change any summary.
	store.Subscribe(func(services.Snapshot) {
		s.cacheMu.Lock()
		defer s.cacheMu.Unlock()
		s.generation++
		s.summaryCache.Purge()
	})

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/currency", s.handleGetCurrency)
	mux.HandleFunc("PUT /api/currency", s.handleSetCurrency)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/currencies", s.handleCurrencies)

	s.Handler = s.withMiddleware(mux)
	return s
}

// Shutdown stops accepting requests and the cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.shuttingDown.Store(true)
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds request ids, request logging, security headers and
// rate limiting of mutating requests.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		reqID := requestID(r)

		reqLogger := s.logger.With(log.FieldRequestID, reqID)
		ctx := log.NewContext(r.Context(), reqLogger)
		r = r.WithContext(ctx)

		w.Header().Set("X-Request-ID", reqID)
		setSecurityHeaders(w.Header())

		s.requestLogger.LogStart(ctx, r, reqID, clientIP)

		if detectSuspiciousRequest(r, &s.metrics) {
			reqLogger.WarnContext(ctx, "Suspicious request",
				log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
		}

		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, &s.metrics) {
			reqLogger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			_ = TooManyRequestsError(s.rateLimiter.retryAfter(clientIP)).Write(rw)
		} else {
			next.ServeHTTP(rw, r)
		}

		elapsed := time.Since(start)
		s.metrics.observe(elapsed)
		s.requestLogger.LogEnd(ctx, r, reqID, clientIP, rw.statusCode, elapsed.Milliseconds())
	})
}

func summaryKey(f core.FilterState) string {
	return f.Month + "\x00" + string(f.Category) + "\x00" + f.Search
}

// currentGeneration is read before listing so a summary computed from a
// list that has since changed is not cached.
func (s *Server) currentGeneration() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.generation
}

// summarize returns the overview for f, computing it from all on a miss.
// all must have been listed after gen was read.
func (s *Server) summarize(ctx context.Context, gen uint64, all []core.Expense, f core.FilterState) core.MonthOverview {
	key := summaryKey(f)
	if ov, ok := s.summaryCache.Get(key); ok {
		log.FromContext(ctx).DebugContext(ctx, "Summary cache hit", log.FieldMonth, f.Month)
		return ov
	}

	ov := core.Summarize(all, f)

	s.cacheMu.Lock()
	if s.generation == gen {
		s.summaryCache.Set(key, ov)
	}
	s.cacheMu.Unlock()
	return ov
}
