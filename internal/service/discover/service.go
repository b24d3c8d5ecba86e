package discover

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/emberapp/ember-backend/internal/app"
	"github.com/emberapp/ember-backend/internal/db"
	svcErr "github.com/emberapp/ember-backend/internal/errors"
	"github.com/emberapp/ember-backend/internal/repository"
	"github.com/emberapp/ember-backend/internal/server"
	"github.com/emberapp/ember-backend/internal/utils/phone"
)

// Service implements the candidate feed: preference filtering,
// exclusion of already-decided pairs, and boost/recency ranking.
type Service struct {
	appCtx       *app.AppContext
	interactions *repository.InteractionRepository
	matches      *repository.MatchRepository
	users        *repository.UserRepository
}

// NewService creates a new discover service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:       appCtx,
		interactions: repository.NewInteractionRepository(appCtx.DB),
		matches:      repository.NewMatchRepository(appCtx.DB),
		users:        repository.NewUserRepository(appCtx.DB),
	}
}

// Candidate is one feed entry. Phone is masked unless the requester and
// the candidate already matched; masking happens here, never client-side.
type Candidate struct {
	ID                 uint64    `json:"id"`
	Username           string    `json:"username"`
	Gender             string    `json:"gender"`
	Age                int       `json:"age"`
	City               string    `json:"city,omitempty"`
	RelationshipStatus string    `json:"relationship_status,omitempty"`
	Verified           bool      `json:"verified"`
	PhotoCount         int       `json:"photo_count"`
	Education          string    `json:"education,omitempty"`
	Profession         string    `json:"profession,omitempty"`
	Drinking           string    `json:"drinking,omitempty"`
	Smoking            string    `json:"smoking,omitempty"`
	Eating             string    `json:"eating,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	Boosted            bool      `json:"boosted"`
	Matched            bool      `json:"matched"`
	LastActiveAt       time.Time `json:"last_active_at"`
}

type feedResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// GetFeed returns the requester's next page of candidates.
//
// Behavior:
//   - Gender defaults to the opposite of the requester's own gender when
//     the requester is male/female and no explicit filter was given; an
//     explicit gender (anything but "any") always wins.
//   - Excludes self, every liked/superliked target, and the most recent
//     N disliked targets (sliding window; older dislikes recycle).
//   - Orders boosted-first, then last_active_at DESC, created_at DESC.
//   - Clamps limit to the configured maximum.
func (s *Service) GetFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requesterID := server.RequestUserID(r)

	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			svcErr.Write(w, svcErr.Unauthorized("unknown requester"))
			return
		}
		svcErr.Write(w, err)
		return
	}

	q := r.URL.Query()
	now := time.Now()

	limit := queryInt(q.Get("limit"), s.appCtx.Config.Feed.MaxLimit)
	if limit > s.appCtx.Config.Feed.MaxLimit {
		limit = s.appCtx.Config.Feed.MaxLimit
	}
	skip := queryInt(q.Get("skip"), 0)

	gender := resolveGender(q.Get("gender"), requester.Gender)

	excludeIDs, err := s.exclusionSet(ctx, requesterID)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	candidates, err := s.users.FindCandidates(ctx, repository.CandidateQuery{
		RequesterID:        requesterID,
		ExcludeIDs:         excludeIDs,
		Gender:             gender,
		MinAge:             queryInt(q.Get("minAge"), 0),
		MaxAge:             queryInt(q.Get("maxAge"), 0),
		City:               q.Get("city"),
		RelationshipStatus: q.Get("relationshipStatus"),
		VerifiedOnly:       queryBool(q.Get("verifiedOnly")),
		HasPhotos:          queryBool(q.Get("hasPhotos")),
		Education:          q.Get("education"),
		Profession:         q.Get("profession"),
		Drinking:           q.Get("drinking"),
		Smoking:            q.Get("smoking"),
		Eating:             q.Get("eating"),
		Skip:               skip,
		Limit:              limit,
		Now:                now,
	})
	if err != nil {
		s.appCtx.Logger.Error("candidate query failed", "requester", requesterID, "err", err)
		svcErr.Write(w, err)
		return
	}

	candidateIDs := make([]uint64, 0, len(candidates))
	for _, c := range candidates {
		candidateIDs = append(candidateIDs, c.ID)
	}
	matched, err := s.matches.MatchedSet(ctx, requesterID, candidateIDs)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	resp := feedResponse{Candidates: make([]Candidate, 0, len(candidates))}
	for _, c := range candidates {
		resp.Candidates = append(resp.Candidates, buildCandidate(c, matched[c.ID], now))
	}

	if err := s.users.TouchLastActive(ctx, requesterID, now); err != nil {
		s.appCtx.Logger.Warn("failed to touch last_active_at", "user", requesterID, "err", err)
	}

	s.appCtx.Logger.Debug("GetFeed result", "requester", requesterID, "count", len(resp.Candidates), "gender", gender)

	server.WriteJSON(w, http.StatusOK, resp)
}

// exclusionSet computes the target ids hidden from the requester's
// feed: every positive target (permanent) plus the recent-dislike
// window (sliding, configurable size).
func (s *Service) exclusionSet(ctx context.Context, requesterID uint64) ([]uint64, error) {
	liked, err := s.interactions.PositiveTargetIDs(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	disliked, err := s.interactions.RecentDislikedIDs(ctx, requesterID, s.appCtx.Config.Feed.DislikeWindow)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint64]struct{}, len(liked)+len(disliked))
	exclude := make([]uint64, 0, len(liked)+len(disliked))
	for _, id := range append(liked, disliked...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		exclude = append(exclude, id)
	}
	return exclude, nil
}

func buildCandidate(u db.User, matched bool, now time.Time) Candidate {
	p := phone.Mask(u.Phone)
	if matched {
		p = u.Phone
	}
	return Candidate{
		ID:                 u.ID,
		Username:           u.Username,
		Gender:             u.Gender,
		Age:                u.Age,
		City:               u.City,
		RelationshipStatus: u.RelationshipStatus,
		Verified:           u.Verified,
		PhotoCount:         u.PhotoCount,
		Education:          u.Education,
		Profession:         u.Profession,
		Drinking:           u.Drinking,
		Smoking:            u.Smoking,
		Eating:             u.Eating,
		Phone:              p,
		Boosted:            u.BoostExpiresAt != nil && u.BoostExpiresAt.After(now),
		Matched:            matched,
		LastActiveAt:       u.LastActiveAt,
	}
}

// resolveGender applies the default-gender policy: an explicit filter
// wins; otherwise male/female requesters default to the opposite
// gender, and anything else gets no narrowing.
func resolveGender(requested, requesterGender string) string {
	if requested != "" && requested != "any" {
		return requested
	}
	switch requesterGender {
	case "male":
		return "female"
	case "female":
		return "male"
	}
	return ""
}

func queryInt(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func queryBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}
