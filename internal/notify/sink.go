// Package notify is the notification sink consumed by the matching
// core. Emission is fire-and-forget: a failed notification is logged
// and dropped, never propagated, and never rolls back the interaction
// or match that triggered it.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/emberapp/ember-backend/internal/cache"
	"github.com/emberapp/ember-backend/internal/db"
	"github.com/emberapp/ember-backend/internal/repository"

	"gorm.io/gorm"
)

type Type string

const (
	TypeLike      Type = "like"
	TypeSuperlike Type = "superlike"
	TypeMatch     Type = "match"
)

// Notification is one event headed for a recipient.
type Notification struct {
	Recipient uint64         `json:"recipient"`
	Sender    uint64         `json:"sender"`
	Type      Type           `json:"type"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
}

// Sink accepts notifications without ever failing the caller.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// Service persists each notification and fans it out over Redis
// pub/sub for realtime consumers. Both steps are best-effort.
type Service struct {
	notifications *repository.NotificationRepository
	cache         *cache.RedisCache
	log           *slog.Logger
}

func NewService(database *gorm.DB, rdb *cache.RedisCache, log *slog.Logger) *Service {
	return &Service{
		notifications: repository.NewNotificationRepository(database),
		cache:         rdb,
		log:           log,
	}
}

func (s *Service) Notify(ctx context.Context, n Notification) {
	data := ""
	if len(n.Data) > 0 {
		if b, err := json.Marshal(n.Data); err == nil {
			data = string(b)
		}
	}

	row := db.Notification{
		RecipientID: n.Recipient,
		SenderID:    n.Sender,
		Type:        string(n.Type),
		Message:     n.Message,
		Data:        data,
	}
	if err := s.notifications.Create(ctx, &row); err != nil {
		s.log.Warn("failed to store notification", "recipient", n.Recipient, "type", n.Type, "err", err)
	}

	payload, err := json.Marshal(n)
	if err != nil {
		s.log.Warn("failed to encode notification", "recipient", n.Recipient, "err", err)
		return
	}
	if err := s.cache.PublishNotification(ctx, n.Recipient, payload); err != nil {
		s.log.Warn("failed to publish notification", "recipient", n.Recipient, "err", err)
	}
}
