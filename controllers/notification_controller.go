package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	apperrors "attire-service/common/errors"
	"attire-service/models"
	"attire-service/notifier"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const streamKeepAlive = 30 * time.Second

type NotificationController struct {
	store  *notifier.Store
	now    func() time.Time
	logger *zap.Logger

	closing   chan struct{}
	closeOnce sync.Once
}

func NewNotificationController(store *notifier.Store, now func() time.Time, logger *zap.Logger) *NotificationController {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationController{store: store, now: now, logger: logger, closing: make(chan struct{})}
}

// CloseStreams ends every open event stream. http.Server.Shutdown does not
// interrupt streaming handlers; register this with RegisterOnShutdown.
func (nc *NotificationController) CloseStreams() {
	nc.closeOnce.Do(func() { close(nc.closing) })
}

// ListNotifications handles GET /notifications, newest first.
func (nc *NotificationController) ListNotifications(c *gin.Context) {
	filter := models.NotificationFilter{
		Type:   models.NotificationType(c.Query("type")),
		Status: models.NotificationStatus(c.Query("status")),
	}
	for param, dst := range map[string]*uuid.UUID{"order_id": &filter.OrderID, "customer_id": &filter.CustomerID} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			apperrors.Respond(c, apperrors.BadRequest(errors.New("invalid "+param)))
			return
		}
		*dst = id
	}
	filter.Page, filter.PageSize = parsePaginationParams(c)

	items, total := nc.store.Query(filter)
	c.JSON(http.StatusOK, gin.H{
		"notifications": items,
		"total":         total,
		"page":          filter.Page,
		"limit":         filter.PageSize,
	})
}

// PendingNotifications lists pending entries due by ?due_by (RFC 3339, default now)
// for the external delivery worker.
func (nc *NotificationController) PendingNotifications(c *gin.Context) {
	dueBy := nc.now()
	if raw := c.Query("due_by"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			apperrors.Respond(c, apperrors.BadRequest(errors.New("due_by must be RFC 3339")))
			return
		}
		dueBy = t
	}
	c.JSON(http.StatusOK, gin.H{"notifications": nc.store.Pending(dueBy)})
}

func (nc *NotificationController) MarkSent(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := nc.store.MarkAsSent(id, nc.now()); err != nil {
		apperrors.Respond(c, notificationError(err))
		return
	}
	nc.respondWith(c, id)
}

type markFailedRequest struct {
	Reason string `json:"reason"`
}

func (nc *NotificationController) MarkFailed(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req markFailedRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	if req.Reason == "" {
		req.Reason = "delivery failed"
	}
	if err := nc.store.MarkAsFailed(id, req.Reason); err != nil {
		apperrors.Respond(c, notificationError(err))
		return
	}
	nc.respondWith(c, id)
}

// Stream pushes the whole log as a server-sent event after every change.
func (nc *NotificationController) Stream(c *gin.Context) {
	updates := make(chan []models.Notification, 1)
	subID := nc.store.Subscribe(func(log []models.Notification) error {
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- log:
		default:
		}
		return nil
	})
	defer nc.store.Unsubscribe(subID)

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("notifications", nc.store.List(true))
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-nc.closing:
			return false
		case log := <-updates:
			c.SSEvent("notifications", log)
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", strconv.FormatInt(nc.now().Unix(), 10))
			return true
		}
	})
	nc.logger.Debug("notification stream closed", zap.String("client", c.ClientIP()))
}

func (nc *NotificationController) respondWith(c *gin.Context, id uuid.UUID) {
	n, ok := nc.store.Get(id)
	if !ok {
		apperrors.Respond(c, apperrors.NotFound(models.ErrNotificationMissing))
		return
	}
	c.JSON(http.StatusOK, n)
}

func notificationError(err error) error {
	if errors.Is(err, models.ErrNotificationMissing) {
		return apperrors.NotFound(err)
	}
	return apperrors.Internal("Failed to update notification", err)
}
