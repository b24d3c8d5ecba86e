package repository

import (
	"context"
	"time"

	"github.com/emberapp/ember-backend/internal/db"
	"github.com/emberapp/ember-backend/internal/utils/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// positiveActions is the set of actions that count toward a match and
// toward permanent feed exclusion.
var positiveActions = []db.Action{db.ActionLike, db.ActionSuperlike}

// InteractionRepository provides data access methods for the Interaction
// model. It encapsulates all queries related to swipes between users.
type InteractionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository creates a new repository bound to the given DB connection.
func NewInteractionRepository(database *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: database}
}

// Upsert inserts or replaces the interaction actor -> target.
//
// Behavior:
//   - If the (actor_id, target_id) pair exists → the row is updated with
//     the new action and a fresh updated_at.
//   - If it doesn't exist → a new row is inserted.
//   - Composite PK makes concurrent duplicate submissions collapse into
//     a single row; the conflict clause absorbs the race, so callers
//     never see a uniqueness violation.
//
// Example:
//
//	repo.Upsert(ctx, 1, 2, db.ActionLike) // user 1 liked user 2
func (r *InteractionRepository) Upsert(
	ctx context.Context,
	actorID, targetID uint64,
	action db.Action,
) error {
	interaction := db.Interaction{
		ActorID:  actorID,
		TargetID: targetID,
		Action:   action,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"action", "updated_at"}),
		}).
		Create(&interaction).Error
}

// Get returns the interaction for an ordered pair, or
// gorm.ErrRecordNotFound when the actor never swiped on the target.
func (r *InteractionRepository) Get(
	ctx context.Context,
	actorID, targetID uint64,
) (db.Interaction, error) {
	var interaction db.Interaction
	err := r.db.WithContext(ctx).
		Where("actor_id = ? AND target_id = ?", actorID, targetID).
		First(&interaction).Error
	return interaction, err
}

// Delete removes the ordered-pair row ("undo swipe").
// Returns gorm.ErrRecordNotFound when no interaction exists.
func (r *InteractionRepository) Delete(
	ctx context.Context,
	actorID, targetID uint64,
) error {
	res := r.db.WithContext(ctx).
		Where("actor_id = ? AND target_id = ?", actorID, targetID).
		Delete(&db.Interaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HasPositive checks whether an actor has liked or superliked a target.
// Used for the reciprocity check after a positive swipe lands.
func (r *InteractionRepository) HasPositive(
	ctx context.Context,
	actorID, targetID uint64,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("interactions i").
		Where("i.actor_id = ? AND i.target_id = ? AND i.action IN ?", actorID, targetID, positiveActions).
		Count(&count).Error
	return count > 0, err
}

// PositiveTargetIDs returns every user the actor has liked or
// superliked. These are excluded from the actor's feed permanently
// (until an explicit undo) so a like can never be submitted twice.
func (r *InteractionRepository) PositiveTargetIDs(
	ctx context.Context,
	actorID uint64,
) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Interaction{}).
		Where("actor_id = ? AND action IN ?", actorID, positiveActions).
		Pluck("target_id", &ids).Error
	return ids, err
}

// RecentDislikedIDs returns the targets of the actor's most recent
// `window` dislikes, newest first. The window is global per actor, not
// per target: an active disliker recycles old skips quickly.
func (r *InteractionRepository) RecentDislikedIDs(
	ctx context.Context,
	actorID uint64,
	window int,
) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Interaction{}).
		Where("actor_id = ? AND action = ?", actorID, db.ActionDislike).
		Order("updated_at DESC, target_id DESC").
		Limit(window).
		Pluck("target_id", &ids).Error
	return ids, err
}

// GetLikers returns all users who liked or superliked the given target.
//
// Behavior:
//   - Excludes users the target has explicitly disliked.
//   - Ordered by updated_at DESC, actor_id DESC.
//   - Supports cursor-based pagination via paginationToken.
//
// Example:
//
//	repo.GetLikers(ctx, 42, nil, 20) // first 20 people who liked user 42
func (r *InteractionRepository) GetLikers(
	ctx context.Context,
	targetID uint64,
	paginationToken *string,
	limit int,
) ([]db.Interaction, *string, error) {
	var interactions []db.Interaction

	// decode cursor if provided
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("interactions i").
		Where("i.target_id = ? AND i.action IN ?", targetID, positiveActions).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM interactions i2
				WHERE i2.actor_id = ?
				  AND i2.target_id = i.actor_id
				  AND i2.action = ?
			)`, targetID, db.ActionDislike).
		Order("i.updated_at DESC, i.actor_id DESC").
		Limit(limit + 1)

	// apply cursor
	if cursor.ActorID > 0 && cursor.UpdatedUnix > 0 {
		ts := time.UnixMilli(cursor.UpdatedUnix)
		query = query.Where(
			"(i.updated_at < ? OR (i.updated_at = ? AND i.actor_id < ?))",
			ts, ts, cursor.ActorID,
		)
	}

	if err := query.Find(&interactions).Error; err != nil {
		return nil, nil, err
	}

	return paginate(interactions, limit)
}

// GetNewLikers returns users who liked the target but have not been
// liked back yet.
//
// Behavior:
//   - Only positive interactions toward the target are considered.
//   - Excludes already-reciprocated likers (mutuals-in-waiting are the
//     whole point of this list).
//   - Excludes users the target explicitly disliked.
//   - Ordered by updated_at DESC, actor_id DESC; cursor-paginated.
func (r *InteractionRepository) GetNewLikers(
	ctx context.Context,
	targetID uint64,
	paginationToken *string,
	limit int,
) ([]db.Interaction, *string, error) {
	var interactions []db.Interaction

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	// subquery to exclude reciprocated likes
	subQuery := r.db.
		Table("interactions").
		Select("1").
		Where("actor_id = i.target_id AND target_id = i.actor_id AND action IN ?", positiveActions)

	query := r.db.WithContext(ctx).
		Table("interactions i").
		Where("i.target_id = ? AND i.action IN ? AND NOT EXISTS (?)", targetID, positiveActions, subQuery).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM interactions i2
				WHERE i2.actor_id = ?
				  AND i2.target_id = i.actor_id
				  AND i2.action = ?
			)`, targetID, db.ActionDislike).
		Order("i.updated_at DESC, i.actor_id DESC").
		Limit(limit + 1)

	// apply cursor
	if cursor.ActorID > 0 && cursor.UpdatedUnix > 0 {
		ts := time.UnixMilli(cursor.UpdatedUnix)
		query = query.Where(
			"(i.updated_at < ? OR (i.updated_at = ? AND i.actor_id < ?))",
			ts, ts, cursor.ActorID,
		)
	}

	if err := query.Find(&interactions).Error; err != nil {
		return nil, nil, err
	}

	return paginate(interactions, limit)
}

// CountLikers returns how many users liked or superliked the target,
// excluding users the target disliked. Used with the Redis cache
// (DB is fallback).
func (r *InteractionRepository) CountLikers(
	ctx context.Context,
	targetID uint64,
) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("interactions i").
		Where("i.target_id = ? AND i.action IN ?", targetID, positiveActions).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM interactions i2
				WHERE i2.actor_id = ?
				  AND i2.target_id = i.actor_id
				  AND i2.action = ?
			)`, targetID, db.ActionDislike).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// paginate trims an over-fetched page and builds the next cursor.
func paginate(interactions []db.Interaction, limit int) ([]db.Interaction, *string, error) {
	var nextToken *string
	if len(interactions) > limit {
		last := interactions[limit-1]
		token, err := pagination.Encode(pagination.Cursor{
			ActorID:     last.ActorID,
			UpdatedUnix: last.UpdatedAt.UnixMilli(),
		})
		if err != nil {
			return nil, nil, err
		}
		nextToken = &token
		interactions = interactions[:limit]
	}
	return interactions, nextToken, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
