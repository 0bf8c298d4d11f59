package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/md-rashed-zaman/slotserve/libs/httpx"
	"github.com/md-rashed-zaman/slotserve/services/availability-service/internal/audit"
	"github.com/md-rashed-zaman/slotserve/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/slotserve/services/availability-service/internal/cache"
	"github.com/md-rashed-zaman/slotserve/services/availability-service/internal/schedule"
)

var tracer = otel.Tracer("availability-service")

type AvailabilityHandler struct {
	logger *slog.Logger
	cache  *cache.SlotCache
	audit  *audit.Publisher
	now    func() time.Time
}

// NewAvailabilityHandler wires the search endpoints. cache and auditPub may be
// nil; the handler then computes every request fresh and skips audit events.
func NewAvailabilityHandler(logger *slog.Logger, slotCache *cache.SlotCache, auditPub *audit.Publisher, now func() time.Time) *AvailabilityHandler {
	if now == nil {
		now = time.Now
	}
	return &AvailabilityHandler{logger: logger, cache: slotCache, audit: auditPub, now: now}
}

type searchRequest struct {
	Configuration schedule.Configuration `json:"configuration"`
	From          string                 `json:"from"`
	To            string                 `json:"to"`
}

type searchResponse struct {
	Slots []availability.TimeSlot `json:"slots"`
	Count int                     `json:"count"`
}

type validateRequest struct {
	Configuration schedule.Configuration `json:"configuration"`
}

func (h *AvailabilityHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	from, err := time.Parse(time.RFC3339, strings.TrimSpace(req.From))
	if err != nil {
		http.Error(w, "invalid from (RFC3339 required)", http.StatusBadRequest)
		return
	}
	to, err := time.Parse(time.RFC3339, strings.TrimSpace(req.To))
	if err != nil {
		http.Error(w, "invalid to (RFC3339 required)", http.StatusBadRequest)
		return
	}

	// The clock is read once here; every boundary decision below uses this
	// sample so results within one request are internally consistent.
	now := h.now()

	var cacheKey string
	if h.cache != nil {
		canonical, err := json.Marshal(req)
		if err == nil {
			cacheKey = cache.Key(canonical, now)
			if body, ok := h.cache.Get(r.Context(), cacheKey); ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(body)
				return
			}
		}
	}

	ctx, span := tracer.Start(r.Context(), "availability.search")
	slots, err := availability.FindAvailableSlots(req.Configuration, from, to, now)
	if err != nil {
		span.End()
		if schedule.IsInvalidConfiguration(err) || availability.IsInvalidWindow(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("slot search failed", "err", err)
		http.Error(w, "slot search failed", http.StatusInternalServerError)
		return
	}
	span.SetAttributes(attribute.Int("slots.count", len(slots)))
	span.End()

	if slots == nil {
		slots = []availability.TimeSlot{}
	}
	body, err := json.Marshal(searchResponse{Slots: slots, Count: len(slots)})
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}

	if h.cache != nil && cacheKey != "" {
		h.cache.Set(ctx, cacheKey, body)
	}
	if h.audit != nil {
		h.audit.Record(ctx, audit.Event{
			RequestID:       httpx.RequestIDFromContext(ctx),
			Timezone:        req.Configuration.Timezone,
			From:            from.UTC().Format(time.RFC3339),
			To:              to.UTC().Format(time.RFC3339),
			DurationMinutes: req.Configuration.SlotDurationMinutes,
			SlotCount:       len(slots),
			OccurredAt:      now.UTC().Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *AvailabilityHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	if _, err := availability.ValidateConfiguration(req.Configuration); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"valid": true})
}
