package repository

import (
	"context"
	"strings"
	"time"

	"github.com/emberapp/ember-backend/internal/db"

	"gorm.io/gorm"
)

// CandidateQuery carries the resolved filter set for one feed page.
// All attribute filters are optional and AND-combined; zero values mean
// "not specified". Gender must already have the default-policy applied
// by the service layer.
type CandidateQuery struct {
	RequesterID uint64
	ExcludeIDs  []uint64

	Gender             string
	MinAge             int
	MaxAge             int
	City               string
	RelationshipStatus string
	VerifiedOnly       bool
	HasPhotos          bool
	Education          string
	Profession         string
	Drinking           string
	Smoking            string
	Eating             string

	Skip  int
	Limit int
	Now   time.Time
}

// UserRepository provides data access methods for the User model.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// GetByID fetches a user, or gorm.ErrRecordNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return user, err
}

// GetByIDs fetches a batch of users keyed by id.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]db.User, error) {
	byID := make(map[uint64]db.User, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	var users []db.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

// TouchLastActive bumps the user's activity timestamp. Best-effort;
// callers log and move on when it fails.
func (r *UserRepository) TouchLastActive(ctx context.Context, id uint64, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Update("last_active_at", now).Error
}

// FindCandidates returns one page of feed candidates.
//
// Ordering is a deterministic tie-break chain, not a relevance score:
//  1. active visibility boost (boost_expires_at in the future) first
//  2. last_active_at DESC
//  3. created_at DESC
//
// Exclusion ids (self, liked set, recent-dislike window) are resolved by
// the caller so this stays a single indexed query.
func (r *UserRepository) FindCandidates(ctx context.Context, q CandidateQuery) ([]db.User, error) {
	query := r.db.WithContext(ctx).
		Model(&db.User{}).
		Select("*, CASE WHEN boost_expires_at IS NOT NULL AND boost_expires_at > ? THEN 1 ELSE 0 END AS boost_active", q.Now).
		Where("id <> ?", q.RequesterID).
		Where("active = ?", true)

	if len(q.ExcludeIDs) > 0 {
		query = query.Where("id NOT IN ?", q.ExcludeIDs)
	}
	if specified(q.Gender) {
		query = query.Where("gender = ?", q.Gender)
	}
	if q.MinAge > 0 {
		query = query.Where("age >= ?", q.MinAge)
	}
	if q.MaxAge > 0 {
		query = query.Where("age <= ?", q.MaxAge)
	}
	if q.City != "" {
		// prefix match, case-insensitive
		query = query.Where("LOWER(city) LIKE ?", strings.ToLower(q.City)+"%")
	}
	if specified(q.RelationshipStatus) {
		query = query.Where("relationship_status = ?", q.RelationshipStatus)
	}
	if q.VerifiedOnly {
		query = query.Where("verified = ?", true)
	}
	if q.HasPhotos {
		query = query.Where("photo_count > 0")
	}
	if q.Education != "" {
		query = query.Where("LOWER(education) LIKE ?", "%"+strings.ToLower(q.Education)+"%")
	}
	if q.Profession != "" {
		query = query.Where("LOWER(profession) LIKE ?", "%"+strings.ToLower(q.Profession)+"%")
	}
	if specified(q.Drinking) {
		query = query.Where("drinking = ?", q.Drinking)
	}
	if specified(q.Smoking) {
		query = query.Where("smoking = ?", q.Smoking)
	}
	if specified(q.Eating) {
		query = query.Where("eating = ?", q.Eating)
	}

	var users []db.User
	err := query.
		Order("boost_active DESC, last_active_at DESC, created_at DESC").
		Offset(q.Skip).
		Limit(q.Limit).
		Find(&users).Error
	return users, err
}

// specified reports whether an enum-style filter narrows the result.
func specified(v string) bool {
	return v != "" && v != "any"
}
