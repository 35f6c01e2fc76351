package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidilihatim/avolship-sub011/internal/config"
	"github.com/tidilihatim/avolship-sub011/internal/identity"
	"github.com/tidilihatim/avolship-sub011/internal/obs"
	"github.com/tidilihatim/avolship-sub011/internal/ratelimit"
	"github.com/tidilihatim/avolship-sub011/internal/token"
)

// ReadyProbe checks backing dependencies for /readyz.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer of the access service.
type API struct {
	mux        *http.ServeMux
	cfg        config.Config
	tokens     *token.Service
	store      identity.Store
	login      *ratelimit.Limiter
	readyProbe ReadyProbe
	version    string

	rateBurst  int
	ratePerSec int
}

func New(cfg config.Config, tokens *token.Service, store identity.Store, login *ratelimit.Limiter, rp ReadyProbe, version string) *API {
	a := &API{
		mux:        http.NewServeMux(),
		cfg:        cfg,
		tokens:     tokens,
		store:      store,
		login:      login,
		readyProbe: rp,
		version:    version,
		rateBurst:  40,
		ratePerSec: 20,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth surface
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/me", a.guardAPI(nil, "", a.handleMe))
	a.mux.HandleFunc("/v1/auth/service-token", a.guardAPI(nil, "", a.handleServiceToken))

	// admin surface
	a.mux.HandleFunc("/v1/admin/rate-limit/reset",
		a.guardAPI([]identity.Role{identity.RoleAdmin, identity.RoleSuperAdmin}, "", a.handleRateLimitReset))
	a.mux.HandleFunc("/v1/admin/users",
		a.guardAPI([]identity.Role{identity.RoleAdmin, identity.RoleSuperAdmin}, identity.StatusApproved, a.handleListUsers))

	// page surfaces
	a.mux.HandleFunc("/dashboard/", a.handleDashboard)
	a.mux.HandleFunc("/auth/login", a.handleLoginPage)
	a.mux.HandleFunc("/auth/pending", a.handlePendingPage)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withIdentity(h)
	h = obs.Instrument(h)
	h = LoggingJSON(h)
	h = Throttle(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h, a.cfg.AllowedOrigins)
	h = SecurityHeaders(h)
	h = RequestID(h)
	return h
}

// --- health/info handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "avolship-access",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
		})
		obs.LogError("readiness probe failed", err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "avolship-access",
		"environment": a.cfg.Environment,
		"time":        time.Now().UTC().Format(time.RFC3339),
		"version":     a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

// errEmptyBody marks a request with no JSON payload at all; handlers with
// optional bodies treat it as "no arguments".
var errEmptyBody = errors.New("request body is required")

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}
