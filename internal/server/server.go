// Package server implements the craftstat HTTP proxy.
//
// The proxy exposes the library's lookup pipeline over a small JSON API so
// that non-Go consumers share one cache and one rate-limit-friendly client:
//
//	GET /healthz
//	GET /v1/status/{edition}/{address}
//	GET /v1/icon/{edition}/{address}
//
// where edition is "java" or "bedrock" and address is host or host:port.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/craftstat/craftstat/pkg/errors"
	"github.com/craftstat/craftstat/pkg/mcsrvstat"
)

// Server serves the status proxy API.
type Server struct {
	client *mcsrvstat.Client
	logger *log.Logger
	addr   string
}

// New creates a Server around an existing client. The caller keeps
// ownership of the client and closes it after Run returns.
func New(addr string, client *mcsrvstat.Client, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{client: client, logger: logger, addr: addr}
}

// Router builds the chi route tree. Exposed separately from Run so tests
// can drive it through httptest.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/v1/status/{edition}/{address}", s.handleStatus)
	r.Get("/v1/icon/{edition}/{address}", s.handleIcon)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey int

const requestIDKey ctxKey = 0

// requestID tags every request with a UUID, echoed in the X-Request-ID
// response header and attached to log lines.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", r.Context().Value(requestIDKey),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusResponse is the JSON envelope for a status lookup. The timing
// fields are not part of ServerStatus's own encoding, so they ride
// alongside it here.
type statusResponse struct {
	*mcsrvstat.ServerStatus
	LatencyMS   int64     `json:"latency_ms"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	st, err := s.client.GetStatus(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		ServerStatus: st,
		LatencyMS:    st.Latency.Milliseconds(),
		RetrievedAt:  st.RetrievedAt,
	})
}

func (s *Server) handleIcon(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := s.client.GetIcon(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// queryFromRequest parses the edition and address route parameters.
// Validation proper happens inside the client; this only needs to split
// host from port.
func queryFromRequest(r *http.Request) (mcsrvstat.Query, error) {
	edition := mcsrvstat.Edition(chi.URLParam(r, "edition"))
	if !edition.Valid() {
		return mcsrvstat.Query{}, errors.New(errors.ErrCodeInvalidQuery,
			"unknown edition %q, want java or bedrock", string(edition))
	}

	address := chi.URLParam(r, "address")
	host, port := address, 0
	if h, p, err := net.SplitHostPort(address); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil {
			return mcsrvstat.Query{}, errors.New(errors.ErrCodeInvalidQuery,
				"invalid port %q", p)
		}
		host, port = h, n
	}

	return mcsrvstat.Query{Host: host, Port: port, Edition: edition}, nil
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidQuery:
		status = http.StatusBadRequest
	case errors.ErrCodeUpstreamUnavailable, errors.ErrCodeMalformedResponse:
		status = http.StatusBadGateway
	case "":
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Code: string(code), Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
