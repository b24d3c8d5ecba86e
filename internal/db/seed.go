package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emberapp/ember-backend/internal/matchkey"
)

var (
	seedCities      = []string{"London", "Manchester", "Bristol", "Leeds", "Brighton"}
	seedStatuses    = []string{"single", "divorced", "widowed"}
	seedLifestyle   = []string{"never", "sometimes", "often"}
	seedEating      = []string{"omnivore", "vegetarian", "vegan"}
	seedProfessions = []string{"engineer", "teacher", "designer", "nurse", "chef"}
	seedEducation   = []string{"BSc Computer Science", "BA History", "MSc Physics", "PGCE", "MBA"}
)

// SeedTestData resets the database and populates it with demo users,
// interactions, and the matches implied by the mutual likes.
//
// Behavior:
//  1. Clears existing data in all core tables.
//  2. Creates 20 users (10 male, 10 female) with hashed passwords and
//     full profile attributes; a few carry active visibility boosts.
//  3. Generates ~200 interactions (~60% like, ~30% dislike, ~10%
//     superlike), forcing a mutual like every 3rd pair and creating the
//     corresponding match rows.
//
// Compatible with both MySQL and SQLite (AUTO_INCREMENT reset skipped for SQLite).
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"notifications", "matches", "interactions", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences (only for MySQL)
	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE matches AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'matches'")
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'")
	}

	log.Println("Cleared existing data")

	// --- Seed Users (10 male, 10 female) ---
	for i := 1; i <= 20; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		gender := "male"
		lookingFor := "female"
		if i > 10 {
			gender = "female"
			lookingFor = "male"
		}

		user := User{
			Username:           fmt.Sprintf("user%d", i),
			Email:              fmt.Sprintf("user%d@example.com", i),
			PasswordHash:       string(hash),
			Active:             true,
			Gender:             gender,
			Age:                21 + r.Intn(25),
			City:               seedCities[r.Intn(len(seedCities))],
			Phone:              fmt.Sprintf("+4477009%05d", 10000+i),
			RelationshipStatus: seedStatuses[r.Intn(len(seedStatuses))],
			Verified:           r.Intn(100) < 60,
			PhotoCount:         r.Intn(6),
			Education:          seedEducation[r.Intn(len(seedEducation))],
			Profession:         seedProfessions[r.Intn(len(seedProfessions))],
			Drinking:           seedLifestyle[r.Intn(len(seedLifestyle))],
			Smoking:            seedLifestyle[r.Intn(len(seedLifestyle))],
			Eating:             seedEating[r.Intn(len(seedEating))],
			LookingForGender:   lookingFor,
			LookingForMinAge:   20,
			LookingForMaxAge:   50,
			LastActiveAt:       time.Now().Add(-time.Duration(r.Intn(500)) * time.Hour),
		}

		// every 5th user carries an active visibility boost
		if i%5 == 0 {
			expiry := time.Now().Add(6 * time.Hour)
			user.BoostExpiresAt = &expiry
		}

		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	log.Println("Seeded 20 users.")

	// --- Seed Interactions (~200) ---
	counter := 0
	for actorID := 1; actorID <= 20; actorID++ {
		for j := 0; j < 12; j++ { // each user swipes on ~12 others
			targetID := uint64(r.Intn(20) + 1)
			if uint64(actorID) == targetID {
				continue
			}

			var actor, target User
			if err := db.First(&actor, actorID).Error; err != nil {
				continue
			}
			if err := db.First(&target, targetID).Error; err != nil {
				continue
			}
			if actor.Gender == target.Gender {
				continue
			}

			action := randomAction(r)

			// guarantee mutual likes every 3rd pair
			if counter%3 == 0 {
				action = ActionLike
				recip := Interaction{
					ActorID:  targetID,
					TargetID: uint64(actorID),
					Action:   ActionLike,
				}
				db.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"action", "updated_at"}),
				}).Create(&recip)

				// materialize the match the mutual like implies
				first, second := matchkey.Members(uint64(actorID), targetID)
				match := Match{
					UsersKey: matchkey.Key(uint64(actorID), targetID),
					UserAID:  first,
					UserBID:  second,
				}
				db.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "users_key"}},
					DoNothing: true,
				}).Create(&match)
			}

			interaction := Interaction{
				ActorID:  uint64(actorID),
				TargetID: targetID,
				Action:   action,
			}
			if err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"action", "updated_at"}),
			}).Create(&interaction).Error; err != nil {
				return fmt.Errorf("failed to seed interaction: %w", err)
			}

			counter++
		}
	}

	return nil
}

func randomAction(r *rand.Rand) Action {
	switch n := r.Intn(100); {
	case n < 60:
		return ActionLike
	case n < 90:
		return ActionDislike
	default:
		return ActionSuperlike
	}
}
