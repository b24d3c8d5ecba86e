package inbox

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/emberapp/ember-backend/internal/app"
	svcErr "github.com/emberapp/ember-backend/internal/errors"
	"github.com/emberapp/ember-backend/internal/repository"
	"github.com/emberapp/ember-backend/internal/server"
)

const defaultPageSize = 20

// Service exposes the requester's stored notifications. Delivery
// transport (push) lives outside this backend; this is the read model.
type Service struct {
	appCtx        *app.AppContext
	notifications *repository.NotificationRepository
}

// NewService creates a new inbox service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:        appCtx,
		notifications: repository.NewNotificationRepository(appCtx.DB),
	}
}

type notificationItem struct {
	ID        uint64          `json:"id"`
	Sender    uint64          `json:"sender"`
	Type      string          `json:"type"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"created_at"`
}

type listResponse struct {
	Notifications []notificationItem `json:"notifications"`
}

// List returns the requester's recent notifications, newest first.
func (s *Service) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := server.RequestUserID(r)

	limit := defaultPageSize
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= 100 {
		limit = n
	}

	rows, err := s.notifications.ListForRecipient(ctx, userID, limit)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	resp := listResponse{Notifications: make([]notificationItem, 0, len(rows))}
	for _, n := range rows {
		item := notificationItem{
			ID:        n.ID,
			Sender:    n.SenderID,
			Type:      n.Type,
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
		if n.Data != "" {
			item.Data = json.RawMessage(n.Data)
		}
		resp.Notifications = append(resp.Notifications, item)
	}

	server.WriteJSON(w, http.StatusOK, resp)
}

// MarkRead flags one of the requester's notifications as read.
func (s *Service) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := server.RequestUserID(r)

	id, err := strconv.ParseUint(chi.URLParam(r, "notificationID"), 10, 64)
	if err != nil || id == 0 {
		svcErr.Write(w, svcErr.InvalidArgument("notificationID must be a valid uint64"))
		return
	}

	if err := s.notifications.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			svcErr.Write(w, svcErr.NotFound("notification not found"))
			return
		}
		svcErr.Write(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
