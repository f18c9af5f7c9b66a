// Package gateway runs the standalone venue scanner endpoint. Scanner
// devices are provisioned with an opaque token per event and talk to this
// gateway over the venue network, separate from the attendee-facing API.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"ticket-gate/internal/services"
	"ticket-gate/internal/status"
	"ticket-gate/models"
	"ticket-gate/security"
	"ticket-gate/utils"
)

const (
	deviceIDHeader    = "X-Device-Id"
	deviceTokenHeader = "X-Device-Token"
)

type Gateway struct {
	echo    *echo.Echo
	srv     *http.Server
	redis   *redis.Client
	scans   *services.ScanService
	staff   *services.StaffService
	limiter *security.RateLimiter
}

func New(redisClient *redis.Client, scans *services.ScanService, staff *services.StaffService) *Gateway {
	g := &Gateway{
		echo:    echo.New(),
		redis:   redisClient,
		scans:   scans,
		staff:   staff,
		limiter: security.NewRateLimiter(redisClient),
	}
	g.srv = &http.Server{Handler: g.echo}

	// Unauthenticated routes get the anti-bot guard; scan routes are
	// device-authenticated and carry their own per-device limit.
	antiBot := g.limiter.AntiBotMiddleware()
	g.echo.GET("/health", g.health, antiBot)
	g.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()), antiBot)

	scan := g.echo.Group("/scan", g.deviceAuth, g.limiter.ScanRateLimit())
	scan.POST("", g.scan)

	return g
}

// Start blocks serving until the listener fails or Shutdown is called.
func (g *Gateway) Start(addr string) error {
	g.srv.Addr = addr
	return g.srv.ListenAndServe()
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.srv.Shutdown(ctx)
}

func deviceKey(deviceID string) string {
	return fmt.Sprintf("scanner:device:%s", deviceID)
}

// deviceAccount is the roster identity a scanner device acts as.
func deviceAccount(deviceID string) string {
	return fmt.Sprintf("device:%s", deviceID)
}

// deviceAuth verifies the device token against the stored bcrypt hash.
func (g *Gateway) deviceAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		deviceID := c.Request().Header.Get(deviceIDHeader)
		token := c.Request().Header.Get(deviceTokenHeader)
		if deviceID == "" || token == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "Device credentials required",
			})
		}

		hash, err := g.redis.HGet(c.Request().Context(), deviceKey(deviceID), "token_hash").Result()
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "Unknown device",
			})
		}

		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "Invalid device token",
			})
		}

		c.Set("device_id", deviceID)
		return next(c)
	}
}

func (g *Gateway) scan(c echo.Context) error {
	var req struct {
		Payload string `json:"payload"`
		EventID uint64 `json:"event_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request",
		})
	}
	if req.Payload == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "payload is required",
		})
	}

	deviceID, _ := c.Get("device_id").(string)
	result, err := g.scans.Redeem(c.Request().Context(), req.Payload, req.EventID, deviceAccount(deviceID))
	if err != nil {
		return c.JSON(scanStatus(err), map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, result)
}

// scanStatus distinguishes the rejection classes a scanner device reacts
// differently to; anything else reads as a generic unprocessable scan.
func scanStatus(err error) int {
	switch {
	case errors.Is(err, status.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, status.ErrInsufficientStaffPrivilege):
		return http.StatusForbidden
	case errors.Is(err, status.ErrIllegalTransition):
		return http.StatusConflict
	case errors.Is(err, status.ErrQrExpired),
		errors.Is(err, status.ErrUnrecognizedPayload),
		errors.Is(err, status.ErrEventContextMismatch):
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

func (g *Gateway) health(c echo.Context) error {
	if err := utils.RedisHealthCheck(g.redis); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ProvisionDevice registers a scanner device for one event: the token hash
// is stored and the device identity is rostered as a scanner. organizer or
// manager only, enforced through the staff service.
func (g *Gateway) ProvisionDevice(ctx context.Context, eventID uint64, caller, deviceID, token string) error {
	if err := g.staff.Require(ctx, eventID, caller, models.RoleManager); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash device token: %w", err)
	}

	if err := g.redis.HSet(ctx, deviceKey(deviceID), map[string]any{
		"token_hash": string(hash),
		"event_id":   eventID,
	}).Err(); err != nil {
		return fmt.Errorf("store device %s: %w", deviceID, err)
	}

	return g.staff.Assign(ctx, eventID, caller, deviceAccount(deviceID), models.RoleScanner)
}
