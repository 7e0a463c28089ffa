package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Sooraj-Rao/college-resume-project/internal/api/dto"
	"github.com/Sooraj-Rao/college-resume-project/internal/api/middleware"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/analytics"
	"github.com/Sooraj-Rao/college-resume-project/pkg/security/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	livePingInterval = 30 * time.Second
	liveReadTimeout  = 60 * time.Second
	liveBuffer       = 32
)

// LiveSource streams published analytics events. Satisfied by the Redis client.
type LiveSource interface {
	Subscribe(ctx context.Context, channel string, callback func([]byte)) error
}

type AnalyticsHandler struct {
	analytics analytics.Service
	live      LiveSource
	channel   string
	jwtSecret string
	upgrader  websocket.Upgrader
}

// NewAnalyticsHandler builds the dashboard handler. live may be nil, in
// which case the live feed answers 503.
func NewAnalyticsHandler(svc analytics.Service, live LiveSource, channel, jwtSecret string, allowedOrigins []string) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: svc,
		live:      live,
		channel:   channel,
		jwtSecret: jwtSecret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// originChecker allows any origin when none are configured.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if len(allowed) == 0 || origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// Overview returns the caller's dashboard summary
// @Summary Analytics overview
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.OverviewResponse
// @Router /api/analytics/overview [get]
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	overview, err := h.analytics.Overview(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OverviewResponse{Success: true, Overview: overview})
}

// Resume returns the detailed report for one resume
// @Summary Resume analytics
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resume ID"
// @Success 200 {object} dto.ResumeAnalyticsResponse
// @Failure 404 {object} dto.MessageResponse
// @Router /api/analytics/resume/{id} [get]
func (h *AnalyticsHandler) Resume(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	report, err := h.analytics.ResumeReport(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ResumeAnalyticsResponse{Success: true, ResumeReport: report})
}

// Session returns one viewer session
// @Summary Session detail
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} dto.MessageResponse
// @Router /api/analytics/session/{sessionId} [get]
func (h *AnalyticsHandler) Session(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	session, err := h.analytics.SessionDetail(c.Request.Context(), userID, c.Param("sessionId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SessionResponse{Success: true, Session: session})
}

// Compare puts several resumes side by side
// @Summary Compare resumes
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param resumeIds query string true "Comma separated resume IDs"
// @Success 200 {object} dto.CompareResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 404 {object} dto.MessageResponse
// @Router /api/analytics/compare [get]
func (h *AnalyticsHandler) Compare(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	query := middleware.GetValidatedQuery[dto.CompareQuery](c)

	var ids []uuid.UUID
	for _, raw := range strings.Split(query.ResumeIDs, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid resume ID: "+raw)
			return
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		respondMessage(c, http.StatusBadRequest, "Resume IDs are required")
		return
	}

	comparisons, err := h.analytics.Compare(c.Request.Context(), userID, ids)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CompareResponse{Success: true, Comparisons: comparisons})
}

// liveUser authenticates a websocket handshake. Browsers cannot set headers
// on websocket requests, so the token may also arrive as ?token=.
func (h *AnalyticsHandler) liveUser(c *gin.Context) (uuid.UUID, bool) {
	token := middleware.BearerToken(c)
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		return uuid.Nil, false
	}
	claims, err := auth.ValidateToken(token, h.jwtSecret)
	if err != nil || claims.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// Live streams the caller's analytics events over a websocket
// @Summary Live analytics feed
// @Description Upgrades to a websocket that receives every new session and tracked event for the caller's resumes
// @Tags analytics
// @Param token query string false "JWT when the Authorization header cannot be set"
// @Success 101
// @Failure 401 {object} dto.MessageResponse
// @Failure 503 {object} dto.MessageResponse
// @Router /api/analytics/live [get]
func (h *AnalyticsHandler) Live(c *gin.Context) {
	userID, ok := h.liveUser(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, "Access token required")
		return
	}
	if h.live == nil {
		respondMessage(c, http.StatusServiceUnavailable, "Live analytics unavailable")
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("websocket upgrade failed")
		return
	}
	defer ws.Close()

	entry := log.WithField("user_id", userID)
	entry.Info("live analytics connected")
	middleware.LiveConnections.Inc()
	defer middleware.LiveConnections.Dec()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events := make(chan analytics.LiveEvent, liveBuffer)
	go func() {
		err := h.live.Subscribe(ctx, h.channel, func(payload []byte) {
			var event analytics.LiveEvent
			if err := json.Unmarshal(payload, &event); err != nil || event.OwnerID != userID {
				return
			}
			select {
			case events <- event:
			default:
				// slow reader, drop
			}
		})
		if err != nil && ctx.Err() == nil {
			entry.WithError(err).Error("live analytics subscription ended")
		}
		cancel()
	}()

	ws.SetReadLimit(1024)
	_ = ws.SetReadDeadline(time.Now().Add(liveReadTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(liveReadTimeout))
	})

	// the feed is one way; reads only drive pongs and close detection
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					entry.WithError(err).Debug("live analytics read error")
				}
				return
			}
		}
	}()

	ping := time.NewTicker(livePingInterval)
	defer ping.Stop()

	for {
		select {
		case event := <-events:
			if err := ws.WriteJSON(event); err != nil {
				entry.WithError(err).Debug("live analytics write failed")
				return
			}
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-ctx.Done():
			entry.WithFields(logrus.Fields{"reason": ctx.Err()}).Info("live analytics disconnected")
			return
		}
	}
}
