package transport

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/anime-shed/barcode-studio-go/internal/config"
	apperrors "github.com/anime-shed/barcode-studio-go/internal/errors"
	"github.com/anime-shed/barcode-studio-go/internal/logger"
	"github.com/anime-shed/barcode-studio-go/internal/service"
	"github.com/anime-shed/barcode-studio-go/internal/upload"
	"github.com/anime-shed/barcode-studio-go/pkg/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Version is reported by /health.
var Version = "1.0.0"

// multipartOverhead is the allowance for form boundaries and headers on top
// of the file itself.
const multipartOverhead = 1 << 20

// Options configures the HTTP handler.
type Options struct {
	Service service.BarcodeService
	Config  *config.Config
	Logger  logrus.FieldLogger
	// Registry receives the HTTP metrics and backs /metrics. Nil disables both.
	Registry *prometheus.Registry
	// Stats is merged into the /health body when set.
	Stats func() map[string]interface{}
}

type handler struct {
	svc   service.BarcodeService
	cfg   *config.Config
	log   logrus.FieldLogger
	stats func() map[string]interface{}
}

// NewHandler builds the gin engine serving the API and the web UI.
func NewHandler(opts Options) http.Handler {
	h := &handler{svc: opts.Service, cfg: opts.Config, log: opts.Logger, stats: opts.Stats}
	if h.log == nil {
		h.log = logger.Logger
	}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(h.cfg.GinMode)
	}
	r := gin.New()
	r.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(h.log),
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
			ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
			MaxAge:        12 * time.Hour,
		}),
	)
	if opts.Registry != nil {
		r.Use(httpMetrics(opts.Registry))
	}
	if h.cfg.StaticDir != "" {
		r.Use(static.Serve("/", static.LocalFile(h.cfg.StaticDir, false)))
	}

	r.GET("/health", h.healthCheck)
	if opts.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	api.GET("/types", h.listTypes)
	api.POST("/generate", requestSizeLimiter(h.cfg.MaxRequestBodySize), h.generate)
	api.POST("/generate/batch", requestSizeLimiter(h.cfg.MaxRequestBodySize), h.generateBatch)
	api.POST("/scan", requestSizeLimiter(h.cfg.MaxUploadSize+multipartOverhead), h.scan)

	return r
}

func (h *handler) generate(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	res, err := h.svc.Generate(ctx, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) generateBatch(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	var req models.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	resp, err := h.svc.GenerateBatch(ctx, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) scan(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	fh, err := c.FormFile(upload.FieldName)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.respondError(c, apperrors.NewPayloadTooLargeError("File too large", err))
			return
		}
		h.respondError(c, apperrors.NewValidationError("No image file provided", err))
		return
	}

	var req models.ScanRequest
	if err := c.ShouldBind(&req); err != nil {
		h.respondError(c, apperrors.NewValidationError("Invalid scan options", err))
		return
	}

	resp, err := h.svc.ScanUpload(ctx, fh, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) listTypes(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Types())
}

func (h *handler) healthCheck(c *gin.Context) {
	body := models.HealthResponse{
		Status:  "available",
		Version: Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	if h.stats != nil {
		body.Stats = h.stats()
	}
	c.JSON(http.StatusOK, body)
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":             c.Request.Method,
			"path":               c.Request.URL.Path,
			"status":             c.Writer.Status(),
			"ip":                 c.ClientIP(),
			"request_id":         c.GetString("request_id"),
			"processing_time_ms": time.Since(start).Milliseconds(),
		}).Info("Request handled")
	}
}

func bindError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.NewPayloadTooLargeError("Request body too large", err)
	}
	return apperrors.NewValidationError("Invalid request body", err)
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {error, message}. Client errors carry the AppError
// message as error; server errors hide their cause.
func (h *handler) respondError(c *gin.Context, err error) {
	code := determineStatusCode(err)
	body := models.ErrorResponse{Error: http.StatusText(code)}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body.Error = appErr.Message
	}
	entry := h.log.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
		"request_id":  c.GetString("request_id"),
	})
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
		if appErr != nil && appErr.Cause != nil {
			body.Message = appErr.Cause.Error()
		}
	}

	c.AbortWithStatusJSON(code, body)
}
