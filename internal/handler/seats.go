package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/library-seat-reservation/internal/store"
	"github.com/iliyamo/library-seat-reservation/internal/view"
)

const seatMapCacheKey = "seatmap:v1"

// SeatHandler serves the live seat map.  The rendered map is cached in
// redis for a short TTL because the booking page polls it aggressively;
// with no redis the handler serves straight from the store.
type SeatHandler struct {
	Store    store.Store
	Redis    *redis.Client
	CacheTTL time.Duration
	Log      zerolog.Logger
}

func NewSeatHandler(st store.Store, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *SeatHandler {
	return &SeatHandler{Store: st, Redis: rdb, CacheTTL: ttl, Log: log.With().Str("component", "seats").Logger()}
}

type seatMapResp struct {
	Seats []view.SeatView `json:"seats"`
}

// List returns every seat with its derived display state.
func (h *SeatHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if body, ok := h.cached(ctx); ok {
		return c.JSONBlob(http.StatusOK, body)
	}

	seats, err := h.Store.ListSeats(ctx)
	if err != nil {
		return engineErrorFromStore(c, err)
	}
	bookings, err := h.Store.ListBookings(ctx)
	if err != nil {
		return engineErrorFromStore(c, err)
	}

	body, err := json.Marshal(seatMapResp{Seats: view.Colors(seats, bookings)})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal"})
	}
	h.cache(ctx, body)
	return c.JSONBlob(http.StatusOK, body)
}

func (h *SeatHandler) cached(ctx context.Context) ([]byte, bool) {
	if h.Redis == nil || h.CacheTTL <= 0 {
		return nil, false
	}
	body, err := h.Redis.Get(ctx, seatMapCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	return body, true
}

func (h *SeatHandler) cache(ctx context.Context, body []byte) {
	if h.Redis == nil || h.CacheTTL <= 0 {
		return
	}
	if err := h.Redis.Set(ctx, seatMapCacheKey, body, h.CacheTTL).Err(); err != nil {
		h.Log.Warn().Err(err).Msg("seat map cache write failed")
	}
}

// engineErrorFromStore maps raw store failures on read-only routes.
func engineErrorFromStore(c echo.Context, err error) error {
	return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store_unavailable", "detail": err.Error()})
}
