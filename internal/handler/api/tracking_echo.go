package api

import (
	"encoding/json"
	"time"

	models "SigTrail/internal/domain/models"
	icache "SigTrail/internal/service/cache"
	"SigTrail/internal/service/metrics"
	"SigTrail/internal/service/ratelimit"
	"SigTrail/internal/usecase"
	xhttp "SigTrail/pkg/http"
	"SigTrail/pkg/identity"
	applogger "SigTrail/pkg/logger"
	"SigTrail/pkg/util"

	"github.com/labstack/echo/v4"
)

// TrackingEchoHandler exposes the signal-tracking view over HTTP.
type TrackingEchoHandler struct {
	mgr   *usecase.SessionManager
	cache icache.BytesCache
	rl    *ratelimit.Limiter
	l     *applogger.Logger
}

func NewTrackingEchoHandler(l *applogger.Logger, mgr *usecase.SessionManager) *TrackingEchoHandler {
	metrics.Register()
	return &TrackingEchoHandler{mgr: mgr, rl: ratelimit.New(), l: l}
}

// SetCache injects a response cache for the summary endpoint.
func (h *TrackingEchoHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *TrackingEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/tracking", h.Tracking)
	g.GET("/tracking/summary", h.Summary)
	g.GET("/identity/normalize", h.Normalize)
}

// TrackingResponse carries the composed view plus coordinator status. A
// failed refresh still returns the last good collections with the error
// alongside.
type TrackingResponse struct {
	Signals   []models.CorrelatedSignal `json:"signals"`
	Orphaned  []models.ExecutionRecord  `json:"orphaned,omitempty"`
	Metrics   models.TrackingMetrics    `json:"metrics"`
	Loading   bool                      `json:"loading"`
	Error     string                    `json:"error,omitempty"`
	ErrorKind string                    `json:"error_kind,omitempty"`
	Retryable bool                      `json:"retryable,omitempty"`
}

type NormalizeResponse struct {
	Input      string `json:"input"`
	Normalized string `json:"normalized"`
	WellFormed bool   `json:"well_formed"`
}

func (h *TrackingEchoHandler) Tracking(c echo.Context) error {
	start := time.Now()
	endpoint := "tracking"
	defer func() { metrics.TrackingLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.TrackingRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":tracking", 10, 5) {
		h.l.Warn("tracking rate_limited", applogger.String("remote", c.RealIP()))
		return xhttp.DataResponse(c, 429, "rate limited")
	}

	scope := models.QueryScope{BotID: req.BotID, OwnerID: req.OwnerID, Privileged: req.Privileged}
	criteria := buildCriteria(req)

	sess := h.mgr.Session(scope)
	sess.SetCriteria(criteria)
	sess.Refresh(c.Request().Context())
	if err := sess.Wait(c.Request().Context()); err != nil {
		metrics.TrackingErrors.WithLabelValues(endpoint).Inc()
		h.l.Error("tracking wait error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	snap := sess.Snapshot()
	return xhttp.SuccessResponse(c, snapshotResponse(snap))
}

func (h *TrackingEchoHandler) Summary(c echo.Context) error {
	start := time.Now()
	endpoint := "summary"
	defer func() { metrics.TrackingLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.SummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":summary", 10, 5) {
		h.l.Warn("summary rate_limited", applogger.String("remote", c.RealIP()))
		return xhttp.DataResponse(c, 429, "rate limited")
	}

	scope := models.QueryScope{BotID: req.BotID, OwnerID: req.OwnerID, Privileged: req.Privileged}
	cacheKey := "summary:" + req.BotID + ":" + req.OwnerID
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
			h.l.Warn("summary cache_get_error", applogger.Error(err))
		} else if ok {
			var m models.TrackingMetrics
			if err := json.Unmarshal(b, &m); err == nil {
				h.l.Debug("summary cache_hit", applogger.String("key", cacheKey))
				return xhttp.SuccessResponse(c, m)
			}
		}
	}

	sess := h.mgr.Session(scope)
	sess.Refresh(c.Request().Context())
	if err := sess.Wait(c.Request().Context()); err != nil {
		metrics.TrackingErrors.WithLabelValues(endpoint).Inc()
		h.l.Error("summary wait error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	m := sess.AggregateNow()
	if h.cache != nil {
		if b, err := json.Marshal(m); err == nil {
			if err := h.cache.SetBytes(cacheKey, b, 30*time.Second); err != nil {
				h.l.Warn("summary cache_set_error", applogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, m)
}

func (h *TrackingEchoHandler) Normalize(c echo.Context) error {
	req := &models.NormalizeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	norm := identity.Normalize(req.ID)
	return xhttp.SuccessResponse(c, NormalizeResponse{
		Input:      req.ID,
		Normalized: norm,
		WellFormed: identity.IsWellFormed(norm),
	})
}

func buildCriteria(req *models.TrackingRequest) models.FilterCriteria {
	return models.FilterCriteria{
		Search:  req.Search,
		Status:  models.ParseStatusClass(req.Status),
		Source:  models.ParseSourceClass(req.Source),
		From:    util.ParseTimePtr(req.From),
		To:      util.ParseTimePtr(req.To),
		OwnerID: req.Owner,
	}
}

func snapshotResponse(snap usecase.TrackingSnapshot) TrackingResponse {
	resp := TrackingResponse{
		Signals:  snap.Correlated,
		Orphaned: snap.Orphaned,
		Metrics:  snap.Metrics,
		Loading:  snap.Loading,
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
		resp.ErrorKind = string(snap.Err.Kind)
		resp.Retryable = snap.Err.Retryable()
	}
	return resp
}
