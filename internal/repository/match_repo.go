package repository

import (
	"context"

	"github.com/emberapp/ember-backend/internal/db"
	"github.com/emberapp/ember-backend/internal/matchkey"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchRepository provides data access methods for the Match model.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// CreateIfAbsent materializes the match for a pair, idempotently.
//
// Behavior:
//   - Inserts a row keyed by the canonical pair key. The unique index on
//     users_key is the only synchronization needed: when two
//     opposite-direction likes race, one insert wins and the other
//     no-ops on the conflict.
//   - RowsAffected == 0 means another writer got there first; the
//     existing row is re-fetched and returned with created=false, so the
//     conflict never surfaces to the caller.
//   - Only created=true callers should notify; re-detection of an
//     already-formed match must stay silent.
func (r *MatchRepository) CreateIfAbsent(
	ctx context.Context,
	userA, userB uint64,
) (db.Match, bool, error) {
	first, second := matchkey.Members(userA, userB)
	match := db.Match{
		UsersKey: matchkey.Key(userA, userB),
		UserAID:  first,
		UserBID:  second,
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "users_key"}},
			DoNothing: true,
		}).
		Create(&match)
	if res.Error != nil {
		return db.Match{}, false, res.Error
	}

	if res.RowsAffected == 0 {
		existing, err := r.GetByKey(ctx, match.UsersKey)
		return existing, false, err
	}
	return match, true, nil
}

// GetByKey fetches a match by its canonical pair key.
func (r *MatchRepository) GetByKey(ctx context.Context, usersKey string) (db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).
		Where("users_key = ?", usersKey).
		First(&match).Error
	return match, err
}

// Exists reports whether a match exists between two users.
func (r *MatchRepository) Exists(ctx context.Context, userA, userB uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("users_key = ?", matchkey.Key(userA, userB)).
		Count(&count).Error
	return count > 0, err
}

// MatchedSet returns which of the candidates have a match with the
// requester. One query per feed page, keyed back by candidate id; the
// feed uses it to decide raw vs masked phone per candidate.
func (r *MatchRepository) MatchedSet(
	ctx context.Context,
	requesterID uint64,
	candidateIDs []uint64,
) (map[uint64]bool, error) {
	matched := make(map[uint64]bool, len(candidateIDs))
	if len(candidateIDs) == 0 {
		return matched, nil
	}

	keyToCandidate := make(map[string]uint64, len(candidateIDs))
	keys := make([]string, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		if id == requesterID {
			continue
		}
		key := matchkey.Key(requesterID, id)
		keyToCandidate[key] = id
		keys = append(keys, key)
	}

	var matches []db.Match
	if err := r.db.WithContext(ctx).
		Where("users_key IN ?", keys).
		Find(&matches).Error; err != nil {
		return nil, err
	}

	for _, m := range matches {
		matched[keyToCandidate[m.UsersKey]] = true
	}
	return matched, nil
}

// ListForUser returns the user's matches, newest first.
func (r *MatchRepository) ListForUser(ctx context.Context, userID uint64) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&matches).Error
	return matches, err
}
