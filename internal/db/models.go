package db

import (
	"time"
)

// Action is the kind of swipe a user performed on another user.
type Action string

const (
	ActionLike      Action = "like"
	ActionDislike   Action = "dislike"
	ActionSuperlike Action = "superlike"
)

// Valid reports whether a is one of the recognized swipe actions.
func (a Action) Valid() bool {
	switch a {
	case ActionLike, ActionDislike, ActionSuperlike:
		return true
	}
	return false
}

// Positive reports whether a counts toward a mutual match.
func (a Action) Positive() bool {
	return a == ActionLike || a == ActionSuperlike
}

// User table. Profile attributes are owned by the profile subsystem;
// the matching core reads them for feed filtering and ranking.
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Active       bool   `gorm:"default:true"`

	Gender             string `gorm:"size:16;not null"`
	Age                int    `gorm:"not null"`
	City               string `gorm:"size:64"`
	Phone              string `gorm:"size:32"`
	RelationshipStatus string `gorm:"size:32"`
	Verified           bool   `gorm:"default:false"`
	PhotoCount         int    `gorm:"default:0"`
	Education          string `gorm:"size:128"`
	Profession         string `gorm:"size:128"`
	Drinking           string `gorm:"size:16"`
	Smoking            string `gorm:"size:16"`
	Eating             string `gorm:"size:16"`

	LookingForGender string `gorm:"size:16"`
	LookingForMinAge int    `gorm:"default:0"`
	LookingForMaxAge int    `gorm:"default:0"`

	// LastActiveAt is bumped on any authenticated request and drives
	// feed ordering. BoostExpiresAt is set by the purchase flow; a
	// future timestamp means the user ranks first in others' feeds.
	LastActiveAt   time.Time `gorm:"index"`
	BoostExpiresAt *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Interaction represents an actor's directional swipe on a target.
//
// Composite PK: (ActorID, TargetID)
//   - Ensures a single row per ordered pair (overwrite guarantee).
//
// Indexes:
//   - idx_target_action_updated_actor(target_id, action, updated_at DESC, actor_id)
//     Optimizes "who liked me" lists with pagination.
//   - idx_actor_action_updated(actor_id, action, updated_at DESC)
//     Optimizes feed-exclusion lookups (liked set, recent dislikes).
type Interaction struct {
	ActorID   uint64    `gorm:"primaryKey;index:idx_actor_action_updated,priority:1"`
	TargetID  uint64    `gorm:"primaryKey;index:idx_target_action_updated_actor,priority:1"`
	Action    Action    `gorm:"size:16;not null;index:idx_target_action_updated_actor,priority:2;index:idx_actor_action_updated,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index:idx_target_action_updated_actor,priority:3,sort:desc;index:idx_actor_action_updated,priority:3,sort:desc"`
}

// Match is the undirected relationship formed when two users have each
// positively swiped on the other.
//
// UsersKey is the canonical pair key (sorted member ids joined by "_");
// its unique index is the anchor that guarantees exactly one match per
// unordered pair, no matter how the two triggering writes race.
// UserAID/UserBID hold the members in key order. Membership is
// immutable once created.
type Match struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	UsersKey string `gorm:"uniqueIndex;size:48;not null"`
	UserAID  uint64 `gorm:"not null;index"`
	UserBID  uint64 `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	// LastActivityAt is bumped by the messaging subsystem when a new
	// message lands in the match's conversation.
	LastActivityAt time.Time `gorm:"autoCreateTime"`
}

// Notification row written by the notification sink. Delivery transport
// (push) consumes these out of band; the matching core only appends.
type Notification struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	RecipientID uint64    `gorm:"not null;index:idx_recipient_created,priority:1"`
	SenderID    uint64    `gorm:"not null"`
	Type        string    `gorm:"size:32;not null"`
	Message     string    `gorm:"size:255;not null"`
	Data        string    `gorm:"type:text"`
	Read        bool      `gorm:"default:false"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index:idx_recipient_created,priority:2,sort:desc"`
}
