package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/paynetra/reports_backend/config"
	"github.com/paynetra/reports_backend/middlewares"
	"github.com/paynetra/reports_backend/models"
	"github.com/paynetra/reports_backend/models/reports"
	"github.com/paynetra/reports_backend/utils"
	"github.com/paynetra/reports_backend/workflow"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

const defaultPort = "8080"

var tracer = otel.Tracer("paynetra-reports")

// Define a struct to represent the rate limiter.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func getRedisClient(redisAddress string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddress,
	})
	return client
}

// queryParams flattens the URL query into the single-valued map the filter
// parser works on. Repeated keys keep their first value.
func queryParams(c *gin.Context) map[string]string {
	params := map[string]string{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}

func reportNow() time.Time {
	return time.Now().In(utils.ReportLocation())
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var ve validator.ValidationErrors
			if errors.As(err, &ve) {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"message": "Validation failed",
					"errors":  utils.ProcessValidationErrors(err),
				})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		user, token, err := models.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, models.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
				return
			}
			config.LogError(config.GetLogger(), "server.go", "loginHandler", "login", req.Username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":       token,
			"username":    user.Username,
			"role":        user.Role,
			"client_code": user.ClientCode,
		})
	}
}

// parseFilter is the shared front half of every transaction endpoint: parse
// once, reject with the full field-keyed error map, or hand back the typed
// filter plus the actor.
func parseFilter(c *gin.Context) (*models.SearchFilter, *models.Actor, map[string]string, bool) {
	params := queryParams(c)
	f, errs := models.ParseSearchFilter(params, utils.ReportLocation())
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"errors":  errs,
		})
		return nil, nil, nil, false
	}
	actor := models.ActorFromContext(c.Request.Context())
	return f, actor, params, true
}

func transactionHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, actor, params, ok := parseFilter(c)
		if !ok {
			return
		}

		pageNo, _ := strconv.Atoi(c.Query("page"))
		pageSize, _ := strconv.Atoi(c.Query("page_size"))
		page := models.NewPage(pageNo, pageSize)

		ctx, span := tracer.Start(c.Request.Context(), "report.transaction_history")
		defer span.End()

		now := reportNow()
		result, err := reports.GetTransactionHistory(ctx, f, actor, page, params, now)
		if err != nil {
			config.LogError(config.GetLogger(), "server.go", "transactionHistoryHandler", "query", params, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch transactions"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"count":          result.Count,
			"page":           result.Page,
			"page_size":      result.PageSize,
			"results":        result.Results,
			"filter_summary": f.Summary(now),
		})
	}
}

func transactionSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, actor, params, ok := parseFilter(c)
		if !ok {
			return
		}

		ctx, span := tracer.Start(c.Request.Context(), "report.transaction_summary")
		defer span.End()

		now := reportNow()
		summary, err := reports.GetTransactionSummaryReport(ctx, f, actor, params, now)
		if err != nil {
			config.LogError(config.GetLogger(), "server.go", "transactionSummaryHandler", "query", params, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute summary"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"summary":        summary,
			"filter_summary": f.Summary(now),
		})
	}
}

func transactionExportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, actor, params, ok := parseFilter(c)
		if !ok {
			return
		}

		ctx, span := tracer.Start(c.Request.Context(), "report.transaction_export")
		defer span.End()

		file, err := reports.ExportTransactionHistory(ctx, f, actor, reportNow())
		if err != nil {
			config.LogError(config.GetLogger(), "server.go", "transactionExportHandler", "export", params, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export transactions"})
			return
		}

		filename := "transactions_" + time.Now().Format("20060102_150405") + ".xlsx"
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename="+filename)
		if err := file.Write(c.Writer); err != nil {
			config.LogError(config.GetLogger(), "server.go", "transactionExportHandler", "write", filename, err)
		}
	}
}

type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

// parseDateParam parses an optional YYYY-MM-DD query value.
func parseDateParam(c *gin.Context, key string) (time.Time, bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return time.Time{}, false, nil
	}
	d, err := time.ParseInLocation("2006-01-02", raw, utils.ReportLocation())
	if err != nil {
		return time.Time{}, false, badRequestError{"invalid " + key + ", use YYYY-MM-DD"}
	}
	return d, true, nil
}

func dailyAnalyticsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		from, _, err := parseDateParam(c, "date_from")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		to, hasTo, err := parseDateParam(c, "date_to")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if hasTo {
			to = models.EndOfDay(to)
		}

		actor := models.ActorFromContext(c.Request.Context())
		rows, err := reports.GetDailyAnalytics(c.Request.Context(), actor, c.Query("merchant_code"), from, to, queryParams(c), reportNow())
		if err != nil {
			config.LogError(config.GetLogger(), "server.go", "dailyAnalyticsHandler", "query", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch daily analytics"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": rows})
	}
}

func paymentModeAnalyticsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		from, _, err := parseDateParam(c, "date_from")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		to, hasTo, err := parseDateParam(c, "date_to")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if hasTo {
			to = models.EndOfDay(to)
		}

		actor := models.ActorFromContext(c.Request.Context())
		rows, err := reports.GetPaymentModeAnalytics(c.Request.Context(), actor, c.Query("merchant_code"), from, to, queryParams(c), reportNow())
		if err != nil {
			config.LogError(config.GetLogger(), "server.go", "paymentModeAnalyticsHandler", "query", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch payment mode analytics"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": rows})
	}
}

func hourlyAnalyticsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		date, _, err := parseDateParam(c, "date")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		actor := models.ActorFromContext(c.Request.Context())
		rows, err := reports.GetHourlyAnalytics(c.Request.Context(), actor, c.Query("merchant_code"), date, queryParams(c), reportNow())
		if err != nil {
			config.LogError(config.GetLogger(), "server.go", "hourlyAnalyticsHandler", "query", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch hourly analytics"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": rows})
	}
}

func monthlyAnalyticsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		year, _ := strconv.Atoi(c.Query("year"))

		actor := models.ActorFromContext(c.Request.Context())
		rows, err := reports.GetMonthlyAnalytics(c.Request.Context(), actor, c.Query("merchant_code"), year, queryParams(c), reportNow())
		if err != nil {
			config.LogError(config.GetLogger(), "server.go", "monthlyAnalyticsHandler", "query", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch monthly analytics"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": rows})
	}
}

// aggregationTriggerHandler wraps one maintenance pass as an admin endpoint.
func aggregationTriggerHandler(run func(ctx context.Context, c *gin.Context) (*workflow.AggregationResult, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := run(c.Request.Context(), c)
		if err != nil {
			if errors.Is(err, workflow.ErrAggregationRunning) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			var badReq badRequestError
			if errors.As(err, &badReq) {
				c.JSON(http.StatusBadRequest, gin.H{"error": badReq.Error()})
				return
			}
			config.LogError(config.GetLogger(), "server.go", "aggregationTriggerHandler", "run", c.FullPath(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "aggregation failed"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// aggregationDate reads the optional date param, defaulting to today.
func aggregationDate(c *gin.Context) (time.Time, error) {
	date, has, err := parseDateParam(c, "date")
	if err != nil {
		return time.Time{}, err
	}
	if !has {
		return reportNow(), nil
	}
	return date, nil
}

func cachePurgeHandler() gin.HandlerFunc {
	// Callers name the report family; the redis prefix stays internal.
	prefixes := map[string]string{
		"history":   "report:history",
		"summary":   "report:summary",
		"analytics": "report:analytics",
	}
	return func(c *gin.Context) {
		prefix, ok := prefixes[c.Param("prefix")]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown cache prefix; use history, summary or analytics"})
			return
		}
		deleted, err := utils.InvalidateCachePrefix(c.Request.Context(), prefix)
		if err != nil {
			config.LogError(config.GetLogger(), "server.go", "cachePurgeHandler", "purge", prefix, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cache purge failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"prefix": c.Param("prefix"), "deleted": deleted})
	}
}

func registerRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")

	api.POST("/auth/login", loginHandler())

	authed := api.Group("")
	authed.Use(middlewares.RequireAuth())
	{
		authed.GET("/transactions/history", transactionHistoryHandler())
		authed.GET("/transactions/summary", transactionSummaryHandler())
		authed.GET("/transactions/export", transactionExportHandler())

		authed.GET("/analytics/daily", dailyAnalyticsHandler())
		authed.GET("/analytics/payment-modes", paymentModeAnalyticsHandler())
		authed.GET("/analytics/hourly", hourlyAnalyticsHandler())
		authed.GET("/analytics/monthly", monthlyAnalyticsHandler())
	}

	admin := api.Group("")
	admin.Use(middlewares.RequireAuth(), middlewares.RequireAdmin())
	{
		admin.POST("/aggregations/daily", aggregationTriggerHandler(func(ctx context.Context, c *gin.Context) (*workflow.AggregationResult, error) {
			date, err := aggregationDate(c)
			if err != nil {
				return nil, err
			}
			return workflow.UpdateDailySummaries(ctx, date)
		}))
		admin.POST("/aggregations/payment-modes", aggregationTriggerHandler(func(ctx context.Context, c *gin.Context) (*workflow.AggregationResult, error) {
			date, err := aggregationDate(c)
			if err != nil {
				return nil, err
			}
			return workflow.UpdatePaymentModeSummaries(ctx, date)
		}))
		admin.POST("/aggregations/hourly", aggregationTriggerHandler(func(ctx context.Context, c *gin.Context) (*workflow.AggregationResult, error) {
			date, err := aggregationDate(c)
			if err != nil {
				return nil, err
			}
			return workflow.UpdateHourlyStats(ctx, date)
		}))
		admin.POST("/aggregations/monthly", aggregationTriggerHandler(func(ctx context.Context, c *gin.Context) (*workflow.AggregationResult, error) {
			now := reportNow()
			year, _ := strconv.Atoi(c.Query("year"))
			month, _ := strconv.Atoi(c.Query("month"))
			if year == 0 {
				year = now.Year()
			}
			if month == 0 {
				month = int(now.Month())
			}
			return workflow.UpdateMonthlyStats(ctx, year, month)
		}))
		admin.POST("/aggregations/backfill", aggregationTriggerHandler(func(ctx context.Context, c *gin.Context) (*workflow.AggregationResult, error) {
			days, _ := strconv.Atoi(c.Query("days"))
			if days == 0 {
				days = 30
			}
			return workflow.BackfillSummaries(ctx, days, reportNow())
		}))

		admin.DELETE("/cache/:prefix", cachePurgeHandler())
	}
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Shutdown coordination.
	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so the platform considers the revision
	// healthy. Until DB/Redis are ready, app endpoints return 503.
	r := gin.New()
	r.Use(middlewares.RequestIdMiddleware())
	r.Use(func(c *gin.Context) {
		// Always allow the startup probe.
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		// Gate critical endpoints on dependency readiness.
		if config.GetDB() == nil || config.GetRedisDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// Production-safe CORS:
	// - In production, require explicit allowlist via CORS_ALLOWED_ORIGINS (comma-separated).
	// - In non-production, allow all (developer convenience).
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			// Safer default: deny all if not configured in production.
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// Optional rate limiting (recommended for production).
	// Env:
	// - RATE_LIMIT_ENABLED=true
	// - RATE_LIMIT_WINDOW_SECONDS=60
	// - RATE_LIMIT_MAX_REQUESTS=600
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		client := getRedisClient(os.Getenv("REDIS_ADDRESS"))
		limit := int64(600)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				limit = n
			}
		}
		windowSec := int64(60)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				windowSec = n
			}
		}
		rateLimiter := NewRateLimiter(client, limit, time.Duration(windowSec)*time.Second)
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(middlewares.AuthMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	registerRoutes(r)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	// Start listening immediately (the startup probe is TCP based).
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow disabling migrations
	// on startup and running them as a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	// Keep the rollups fresh in the background.
	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	defer cancelScheduler()
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("AGGREGATION_SCHEDULER_DISABLED")), "true") {
		go workflow.NewAggregationScheduler(logger).Run(schedulerCtx)
	}

	// Reports read point-in-time rollups; READ COMMITTED avoids gap locking
	// against the pipeline's writes.
	for attempt := 1; ; attempt++ {
		err := db.Exec("SET SESSION TRANSACTION ISOLATION LEVEL READ COMMITTED").Error
		if err == nil {
			break
		}
		sleep := time.Second * time.Duration(1<<minInt(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		logger.WithFields(logrus.Fields{
			"field":   "database",
			"attempt": attempt,
		}).Warn("failed to set isolation level; retrying in " + sleep.String() + ": " + err.Error())
		time.Sleep(sleep)
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("reports API listening on http://localhost:", port, "/api/v1")
	log.Println("Server started successfully")

	// Block until shutdown or server error.
	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Stop background workers first so they don't start new work while we're draining.
	cancelScheduler()

	// Drain HTTP requests.
	shutdownTimeout := 30 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	// Close Redis (best-effort).
	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

// customErrorLogger is a custom Gin middleware that logs only errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only log when there are errors
		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

// Initialize a new RateLimiter instance.
func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// Middleware function to check rate limits.
func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	// Get the IP address or user identifier from the request.
	key := c.ClientIP()

	// Check if the key exists in Redis.
	exists, err := rl.client.Exists(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	// If the key doesn't exist, create it and set expiry.
	if exists == 0 {
		err := rl.client.Set(c.Request.Context(), key, 1, rl.window).Err()
		if err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Next()
		return
	}

	// If the key exists, get the current count.
	count, err := rl.client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	// If the count exceeds the limit, return an error response.
	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
