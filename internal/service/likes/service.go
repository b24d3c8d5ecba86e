package likes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/emberapp/ember-backend/internal/app"
	"github.com/emberapp/ember-backend/internal/db"
	svcErr "github.com/emberapp/ember-backend/internal/errors"
	"github.com/emberapp/ember-backend/internal/repository"
	"github.com/emberapp/ember-backend/internal/server"
	"github.com/emberapp/ember-backend/internal/utils/pagination"
)

const defaultPageSize = 10

// Service exposes the received-likes surface: who liked you, who liked
// you and hasn't been answered, and the cached like count.
type Service struct {
	appCtx       *app.AppContext
	interactions *repository.InteractionRepository
}

// NewService creates a new likes service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:       appCtx,
		interactions: repository.NewInteractionRepository(appCtx.DB),
	}
}

type liker struct {
	UserID  uint64    `json:"user_id"`
	Action  string    `json:"action"`
	LikedAt time.Time `json:"liked_at"`
}

type listLikersResponse struct {
	Likers    []liker `json:"likers"`
	NextToken *string `json:"next_token,omitempty"`
}

// ListReceived returns users who positively swiped on the requester.
//
// Behavior:
//   - ?new=1 narrows to likers the requester has not liked back yet.
//   - Users the requester disliked never appear.
//   - Cursor-based pagination via ?token=..., newest first.
func (s *Service) ListReceived(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := server.RequestUserID(r)
	q := r.URL.Query()

	s.appCtx.Logger.Debug("ListReceived called", "user", userID, "new", q.Get("new"), "token", q.Get("token"))

	limit := defaultPageSize
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 && n <= 50 {
		limit = n
	}

	var token *string
	if t := q.Get("token"); t != "" {
		if _, err := pagination.Decode(t); err != nil {
			svcErr.Write(w, svcErr.InvalidArgument("invalid pagination token"))
			return
		}
		token = &t
	}

	var (
		interactions []db.Interaction
		nextToken    *string
		err          error
	)
	if q.Get("new") != "" {
		interactions, nextToken, err = s.interactions.GetNewLikers(ctx, userID, token, limit)
	} else {
		interactions, nextToken, err = s.interactions.GetLikers(ctx, userID, token, limit)
	}
	if err != nil {
		s.appCtx.Logger.Error("liker query failed", "user", userID, "err", err)
		svcErr.Write(w, err)
		return
	}

	resp := listLikersResponse{Likers: make([]liker, 0, len(interactions)), NextToken: nextToken}
	for _, i := range interactions {
		resp.Likers = append(resp.Likers, liker{
			UserID:  i.ActorID,
			Action:  string(i.Action),
			LikedAt: i.UpdatedAt,
		})
	}

	server.WriteJSON(w, http.StatusOK, resp)
}

type countResponse struct {
	Count uint64 `json:"count"`
}

// CountReceived returns how many users liked the requester.
// Cache-first strategy:
//  1. Attempts to read from Redis (likes:count:userID).
//  2. If cache miss or parse error, falls back to DB via repository.CountLikers.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) CountReceived(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := server.RequestUserID(r)

	s.appCtx.Logger.Debug("CountReceived called", "user", userID)

	key := s.appCtx.RedisCache.KeyForLikeCount(userID)

	// try cache first
	if cached, _ := s.appCtx.RedisCache.Get(ctx, key); cached != "" {
		if n, err := strconv.ParseUint(cached, 10, 64); err == nil {
			// refresh TTL since this user is active
			_ = s.appCtx.RedisCache.Client.Expire(ctx, key, time.Hour).Err()
			server.WriteJSON(w, http.StatusOK, countResponse{Count: n})
			return
		}
	}

	// fallback: DB
	count, err := s.interactions.CountLikers(ctx, userID)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	// set + TTL refresh
	_ = s.appCtx.RedisCache.Set(ctx, key, strconv.FormatInt(count, 10), time.Hour)

	server.WriteJSON(w, http.StatusOK, countResponse{Count: uint64(count)})
}
