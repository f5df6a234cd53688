package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"traffic-monitor/internal/aggregate"
	"traffic-monitor/internal/db"
	"traffic-monitor/internal/domain/admin"
	"traffic-monitor/internal/domain/traffic"
	"traffic-monitor/internal/metrics"
	"traffic-monitor/internal/service"
	"traffic-monitor/internal/utils"
)

type CenterResolver interface {
	ResolveCenter(ctx context.Context, c traffic.Coordinate) (traffic.CenterView, bool, error)
}

type Dashboard interface {
	Records(ctx context.Context) ([]traffic.IncidentRecord, error)
	Summary(ctx context.Context, filter traffic.Filter) (aggregate.Summary, error)
	Center(ctx context.Context, centerID string) (aggregate.CenterAggregate, bool, error)
}

type Admins interface {
	Register(ctx context.Context, payload admin.RegisterPayload) (*admin.Admin, error)
	Login(ctx context.Context, payload admin.LoginPayload) (*admin.Session, error)
	ParseToken(token string) (*service.AdminClaims, error)
	List(ctx context.Context) ([]admin.Admin, error)
	Get(ctx context.Context, centerID string) (*admin.Admin, error)
}

type StoreState interface {
	State() db.State
}

type Handler struct {
	resolver     CenterResolver
	dashboard    Dashboard
	admins       Admins
	store        StoreState
	superuserKey string
	loginLimiter *LoginLimiter
	log          zerolog.Logger
}

func NewHandler(
	resolver CenterResolver,
	dashboard Dashboard,
	admins Admins,
	store StoreState,
	superuserKey string,
	loginLimiter *LoginLimiter,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		resolver:     resolver,
		dashboard:    dashboard,
		admins:       admins,
		store:        store,
		superuserKey: superuserKey,
		loginLimiter: loginLimiter,
		log:          log,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Public endpoints
	public := r.Group("/api/v1")
	{
		public.POST("/centre", h.resolveCenter)
		public.GET("/dash", h.listRecords)
		public.GET("/dashboard", h.dashboardSummary)
		public.GET("/centers/:centerId", h.centerSummary)
		public.POST("/admin/login", RateLimit(h.loginLimiter), h.login)
	}

	superuser := r.Group("/api/v1")
	superuser.Use(RequireSuperuser(h.superuserKey))
	{
		superuser.POST("/admins", h.registerAdmin)
	}

	protected := r.Group("/api/v1")
	protected.Use(RequireAdmin(h.admins))
	{
		protected.GET("/admins", h.listAdmins)
		protected.GET("/admin/me", h.currentAdmin)
	}
}

type coordinateRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

func (h *Handler) resolveCenter(c *gin.Context) {
	var req coordinateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("lat and lng must be numbers"))
		return
	}

	view, ok, err := h.resolver.ResolveCenter(c.Request.Context(), traffic.Coordinate{Lat: *req.Lat, Lng: *req.Lng})
	if err != nil {
		h.handleError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse("no data found"))
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) listRecords(c *gin.Context) {
	records, err := h.dashboard.Records(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(records))
}

func (h *Handler) dashboardSummary(c *gin.Context) {
	filter, err := traffic.NewFilter(c.Query("zone"), utils.NormalizeCenterID(c.Query("centerId")))
	if err != nil {
		h.handleError(c, err)
		return
	}

	summary, err := h.dashboard.Summary(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(summary))
}

func (h *Handler) centerSummary(c *gin.Context) {
	centerID := utils.NormalizeCenterID(c.Param("centerId"))

	center, ok, err := h.dashboard.Center(c.Request.Context(), centerID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse("no data found"))
		return
	}
	c.JSON(http.StatusOK, successResponse(center))
}

func (h *Handler) login(c *gin.Context) {
	var payload admin.LoginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	payload.CenterID = utils.NormalizeCenterID(payload.CenterID)

	session, err := h.admins.Login(c.Request.Context(), payload)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(session))
}

func (h *Handler) registerAdmin(c *gin.Context) {
	var payload admin.RegisterPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	payload.CenterID = utils.NormalizeCenterID(payload.CenterID)

	created, err := h.admins.Register(c.Request.Context(), payload)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(created))
}

func (h *Handler) listAdmins(c *gin.Context) {
	admins, err := h.admins.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(admins))
}

func (h *Handler) currentAdmin(c *gin.Context) {
	a, err := h.admins.Get(c.Request.Context(), c.GetString(adminCenterKey))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(a))
}

func (h *Handler) health(c *gin.Context) {
	state := h.store.State()
	status := http.StatusOK
	if state != db.StateReady {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": http.StatusText(status), "store": state.String()})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, traffic.ErrMalformedRecord):
		c.JSON(http.StatusUnprocessableEntity, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, errorResponse("invalid credentials"))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		h.log.Error().
			Err(err).
			Str("request_id", c.GetString(requestIDKey)).
			Str("path", c.FullPath()).
			Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
