package swipe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/emberapp/ember-backend/internal/app"
	"github.com/emberapp/ember-backend/internal/db"
	svcErr "github.com/emberapp/ember-backend/internal/errors"
	"github.com/emberapp/ember-backend/internal/notify"
	"github.com/emberapp/ember-backend/internal/repository"
	"github.com/emberapp/ember-backend/internal/server"
)

// Service implements the interaction ledger and the match formation
// engine: it records directional swipes, detects reciprocity, and
// materializes matches.
type Service struct {
	appCtx       *app.AppContext
	interactions *repository.InteractionRepository
	matches      *repository.MatchRepository
	users        *repository.UserRepository
	sink         notify.Sink
}

// NewService creates a new swipe service with dependencies from AppContext.
func NewService(appCtx *app.AppContext, sink notify.Sink) *Service {
	return &Service{
		appCtx:       appCtx,
		interactions: repository.NewInteractionRepository(appCtx.DB),
		matches:      repository.NewMatchRepository(appCtx.DB),
		users:        repository.NewUserRepository(appCtx.DB),
		sink:         sink,
	}
}

type putInteractionRequest struct {
	To     uint64 `json:"to"`
	Action string `json:"action"`
}

// MatchedUser is the counterpart profile summary revealed the moment a
// match forms. Phone is raw here: a match exists by definition.
type MatchedUser struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Gender   string `json:"gender"`
	Age      int    `json:"age"`
	City     string `json:"city,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type putInteractionResponse struct {
	Match   bool         `json:"match"`
	MatchID uint64       `json:"match_id,omitempty"`
	User    *MatchedUser `json:"user,omitempty"`
}

// PutInteraction records a swipe actor -> target.
//
// Behavior:
//   - Validates action enum, self-target, and target existence.
//   - Upserts the ordered-pair row (latest action wins).
//   - Maintains the Redis received-like counter (+1/-1, TTL refresh).
//   - Positive actions notify the target (best-effort) and trigger the
//     reciprocity check; on mutual positives the match is formed
//     idempotently and both members are notified exactly once.
func (s *Service) PutInteraction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := server.RequestUserID(r)

	var req putInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.Write(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	s.appCtx.Logger.Debug("PutInteraction called", "actor", actorID, "target", req.To, "action", req.Action)

	if req.To == 0 || req.Action == "" {
		svcErr.Write(w, svcErr.InvalidArgument("to and action are required"))
		return
	}
	action := db.Action(req.Action)
	if !action.Valid() {
		svcErr.Write(w, svcErr.InvalidArgument("action must be one of like|dislike|superlike"))
		return
	}
	if req.To == actorID {
		svcErr.Write(w, svcErr.InvalidArgument("cannot swipe on yourself"))
		return
	}

	target, err := s.users.GetByID(ctx, req.To)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			svcErr.Write(w, svcErr.NotFound("target user not found"))
			return
		}
		svcErr.Write(w, err)
		return
	}

	if err := s.interactions.Upsert(ctx, actorID, req.To, action); err != nil {
		s.appCtx.Logger.Error("interaction upsert failed", "actor", actorID, "target", req.To, "err", err)
		svcErr.Write(w, err)
		return
	}

	// update cache
	key := s.appCtx.RedisCache.KeyForLikeCount(req.To)
	if action.Positive() {
		_, _ = s.appCtx.RedisCache.Incr(ctx, key) // like count +1
	} else {
		_, _ = s.appCtx.RedisCache.Decr(ctx, key) // like count -1
	}
	_ = s.appCtx.RedisCache.Client.Expire(ctx, key, time.Hour).Err() // refresh TTL

	if err := s.users.TouchLastActive(ctx, actorID, time.Now()); err != nil {
		s.appCtx.Logger.Warn("failed to touch last_active_at", "user", actorID, "err", err)
	}

	resp := putInteractionResponse{}

	if action.Positive() {
		s.sink.Notify(ctx, notify.Notification{
			Recipient: req.To,
			Sender:    actorID,
			Type:      notificationType(action),
			Message:   notificationMessage(action),
			Data:      map[string]any{"user_id": actorID},
		})

		mutual, err := s.interactions.HasPositive(ctx, req.To, actorID)
		if err != nil {
			svcErr.Write(w, err)
			return
		}
		if mutual {
			match, created, err := s.matches.CreateIfAbsent(ctx, actorID, req.To)
			if err != nil {
				s.appCtx.Logger.Error("match creation failed", "actor", actorID, "target", req.To, "err", err)
				svcErr.Write(w, err)
				return
			}
			if created {
				s.notifyMatch(ctx, match, actorID, req.To)
			}

			resp.Match = true
			resp.MatchID = match.ID
			resp.User = &MatchedUser{
				ID:       target.ID,
				Username: target.Username,
				Gender:   target.Gender,
				Age:      target.Age,
				City:     target.City,
				Phone:    target.Phone,
			}
		}
	}

	server.WriteJSON(w, http.StatusOK, resp)
}

// DeleteInteraction removes the ordered-pair row ("undo swipe").
func (s *Service) DeleteInteraction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := server.RequestUserID(r)

	targetID, err := strconv.ParseUint(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || targetID == 0 {
		svcErr.Write(w, svcErr.InvalidArgument("userID must be a valid uint64"))
		return
	}

	s.appCtx.Logger.Debug("DeleteInteraction called", "actor", actorID, "target", targetID)

	existing, err := s.interactions.Get(ctx, actorID, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			svcErr.Write(w, svcErr.NotFound("no interaction with this user"))
			return
		}
		svcErr.Write(w, err)
		return
	}

	if err := s.interactions.Delete(ctx, actorID, targetID); err != nil {
		svcErr.Write(w, err)
		return
	}

	// keep the target's received-like counter in step with the undo
	if existing.Action.Positive() {
		key := s.appCtx.RedisCache.KeyForLikeCount(targetID)
		_, _ = s.appCtx.RedisCache.Decr(ctx, key)
		_ = s.appCtx.RedisCache.Client.Expire(ctx, key, time.Hour).Err()
	}

	w.WriteHeader(http.StatusNoContent)
}

type matchItem struct {
	MatchID   uint64      `json:"match_id"`
	CreatedAt time.Time   `json:"created_at"`
	User      MatchedUser `json:"user"`
}

type listMatchesResponse struct {
	Matches []matchItem `json:"matches"`
}

// ListMatches returns the requester's matches with counterpart
// summaries, newest first. Phones are raw on this surface: every entry
// is a match by definition.
func (s *Service) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := server.RequestUserID(r)

	matches, err := s.matches.ListForUser(ctx, userID)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	counterpartIDs := make([]uint64, 0, len(matches))
	for _, m := range matches {
		counterpartIDs = append(counterpartIDs, counterpartID(m, userID))
	}
	counterparts, err := s.users.GetByIDs(ctx, counterpartIDs)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	resp := listMatchesResponse{Matches: make([]matchItem, 0, len(matches))}
	for _, m := range matches {
		u, ok := counterparts[counterpartID(m, userID)]
		if !ok {
			continue
		}
		resp.Matches = append(resp.Matches, matchItem{
			MatchID:   m.ID,
			CreatedAt: m.CreatedAt,
			User: MatchedUser{
				ID:       u.ID,
				Username: u.Username,
				Gender:   u.Gender,
				Age:      u.Age,
				City:     u.City,
				Phone:    u.Phone,
			},
		})
	}

	server.WriteJSON(w, http.StatusOK, resp)
}

func counterpartID(m db.Match, userID uint64) uint64 {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}

// notifyMatch tells both members about a freshly formed match. Only the
// call that actually inserted the row gets here, so a re-detected match
// never re-notifies.
func (s *Service) notifyMatch(ctx context.Context, match db.Match, actorID, targetID uint64) {
	for _, pair := range [][2]uint64{{targetID, actorID}, {actorID, targetID}} {
		s.sink.Notify(ctx, notify.Notification{
			Recipient: pair[0],
			Sender:    pair[1],
			Type:      notify.TypeMatch,
			Message:   "You have a new match",
			Data:      map[string]any{"match_id": match.ID, "user_id": pair[1]},
		})
	}
}

func notificationType(action db.Action) notify.Type {
	if action == db.ActionSuperlike {
		return notify.TypeSuperlike
	}
	return notify.TypeLike
}

func notificationMessage(action db.Action) string {
	if action == db.ActionSuperlike {
		return "Someone superliked your profile"
	}
	return "Someone liked your profile"
}
