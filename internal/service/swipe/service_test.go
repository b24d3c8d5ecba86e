package swipe_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/emberapp/ember-backend/internal/app"
	"github.com/emberapp/ember-backend/internal/cache"
	"github.com/emberapp/ember-backend/internal/config"
	"github.com/emberapp/ember-backend/internal/db"
	"github.com/emberapp/ember-backend/internal/notify"
	"github.com/emberapp/ember-backend/internal/server"
	"github.com/emberapp/ember-backend/internal/service/swipe"
)

//
// Test helpers
//

// seedUsers inserts a minimal, deterministic dataset:
// user1 (male), user2 (female), user3 (female), each with a phone.
func seedUsers(t *testing.T, gdb *gorm.DB) {
	t.Helper()

	users := []db.User{
		{ID: 1, Username: "user1", Email: "u1@test.com", PasswordHash: "x", Active: true,
			Gender: "male", Age: 30, Phone: "+447700900001", LastActiveAt: time.Now()},
		{ID: 2, Username: "user2", Email: "u2@test.com", PasswordHash: "x", Active: true,
			Gender: "female", Age: 28, Phone: "+447700900002", LastActiveAt: time.Now()},
		{ID: 3, Username: "user3", Email: "u3@test.com", PasswordHash: "x", Active: true,
			Gender: "female", Age: 26, Phone: "+447700900003", LastActiveAt: time.Now()},
	}
	require.NoError(t, gdb.Create(&users).Error)
}

// setupRouter spins up an in-memory SQLite DB, a miniredis, and the
// swipe routes behind the identity middleware.
// Each test gets its own isolated DB + Redis.
func setupRouter(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbase.AutoMigrate(&db.User{}, &db.Interaction{}, &db.Match{}, &db.Notification{}))
	seedUsers(t, dbase)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests

	appCtx := app.New(dbase, redisCache, logger, cfg)
	sink := notify.NewService(dbase, redisCache, logger)

	router := chi.NewRouter()
	router.Use(server.RequireUser)
	swipe.NewRegistrar(appCtx, sink).Register(router)
	return router, dbase
}

func doRequest(t *testing.T, h http.Handler, method, path, body, userID string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type putResponse struct {
	Match   bool   `json:"match"`
	MatchID uint64 `json:"match_id"`
	User    *struct {
		ID    uint64 `json:"id"`
		Phone string `json:"phone"`
	} `json:"user"`
}

func decodePut(t *testing.T, rec *httptest.ResponseRecorder) putResponse {
	t.Helper()
	var resp putResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

//
// Tests
//

func TestPutInteractionLikeWithoutReciprocity(t *testing.T) {
	router, gdb := setupRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/interactions", `{"to":2,"action":"like"}`, "1")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodePut(t, rec)
	assert.False(t, resp.Match)
	assert.Nil(t, resp.User)

	var interaction db.Interaction
	require.NoError(t, gdb.First(&interaction, "actor_id = ? AND target_id = ?", 1, 2).Error)
	assert.Equal(t, db.ActionLike, interaction.Action)

	// target got a like notification
	var notifications []db.Notification
	require.NoError(t, gdb.Where("recipient_id = ?", 2).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, "like", notifications[0].Type)
}

func TestPutInteractionMutualFormsMatch(t *testing.T) {
	router, gdb := setupRouter(t)

	// user2 already liked user1
	require.NoError(t, gdb.Create(&db.Interaction{ActorID: 2, TargetID: 1, Action: db.ActionLike}).Error)

	rec := doRequest(t, router, http.MethodPost, "/api/interactions", `{"to":2,"action":"like"}`, "1")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodePut(t, rec)
	assert.True(t, resp.Match)
	assert.NotZero(t, resp.MatchID)
	require.NotNil(t, resp.User)
	assert.Equal(t, uint64(2), resp.User.ID)
	// counterpart phone is revealed raw on match
	assert.Equal(t, "+447700900002", resp.User.Phone)

	var match db.Match
	require.NoError(t, gdb.First(&match, "users_key = ?", "1_2").Error)

	// both members notified exactly once
	var matchNotifs int64
	gdb.Model(&db.Notification{}).Where("type = ?", "match").Count(&matchNotifs)
	assert.Equal(t, int64(2), matchNotifs)
}

func TestPutInteractionDuplicateDoesNotReNotifyMatch(t *testing.T) {
	router, gdb := setupRouter(t)

	require.NoError(t, gdb.Create(&db.Interaction{ActorID: 2, TargetID: 1, Action: db.ActionLike}).Error)

	first := doRequest(t, router, http.MethodPost, "/api/interactions", `{"to":2,"action":"like"}`, "1")
	require.Equal(t, http.StatusOK, first.Code)
	second := doRequest(t, router, http.MethodPost, "/api/interactions", `{"to":2,"action":"like"}`, "1")
	require.Equal(t, http.StatusOK, second.Code)

	// re-detection still reports the match
	resp := decodePut(t, second)
	assert.True(t, resp.Match)

	// one stored interaction row for the ordered pair
	var interactions int64
	gdb.Model(&db.Interaction{}).Where("actor_id = ? AND target_id = ?", 1, 2).Count(&interactions)
	assert.Equal(t, int64(1), interactions)

	// one match row, two match notifications total
	var matches int64
	gdb.Model(&db.Match{}).Count(&matches)
	assert.Equal(t, int64(1), matches)

	var matchNotifs int64
	gdb.Model(&db.Notification{}).Where("type = ?", "match").Count(&matchNotifs)
	assert.Equal(t, int64(2), matchNotifs)
}

func TestPutInteractionSuperlikeCountsAsPositive(t *testing.T) {
	router, gdb := setupRouter(t)

	require.NoError(t, gdb.Create(&db.Interaction{ActorID: 2, TargetID: 1, Action: db.ActionSuperlike}).Error)

	rec := doRequest(t, router, http.MethodPost, "/api/interactions", `{"to":2,"action":"superlike"}`, "1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodePut(t, rec).Match)
}

func TestPutInteractionDislikeNeverMatches(t *testing.T) {
	router, gdb := setupRouter(t)

	require.NoError(t, gdb.Create(&db.Interaction{ActorID: 2, TargetID: 1, Action: db.ActionLike}).Error)

	rec := doRequest(t, router, http.MethodPost, "/api/interactions", `{"to":2,"action":"dislike"}`, "1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodePut(t, rec).Match)

	var matches int64
	gdb.Model(&db.Match{}).Count(&matches)
	assert.Equal(t, int64(0), matches)
}

func TestPutInteractionValidation(t *testing.T) {
	router, _ := setupRouter(t)

	cases := []struct {
		name   string
		body   string
		userID string
		status int
	}{
		{"missing identity", `{"to":2,"action":"like"}`, "", http.StatusUnauthorized},
		{"invalid body", `{`, "1", http.StatusBadRequest},
		{"missing fields", `{}`, "1", http.StatusBadRequest},
		{"unknown action", `{"to":2,"action":"wink"}`, "1", http.StatusBadRequest},
		{"self target", `{"to":1,"action":"like"}`, "1", http.StatusBadRequest},
		{"absent target", `{"to":99,"action":"like"}`, "1", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/interactions", tc.body, tc.userID)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestDeleteInteractionUndo(t *testing.T) {
	router, gdb := setupRouter(t)

	require.NoError(t, gdb.Create(&db.Interaction{ActorID: 1, TargetID: 2, Action: db.ActionLike}).Error)

	rec := doRequest(t, router, http.MethodDelete, "/api/interactions/2", "", "1")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	gdb.Model(&db.Interaction{}).Count(&count)
	assert.Equal(t, int64(0), count)

	// undo again → nothing left to remove
	rec = doRequest(t, router, http.MethodDelete, "/api/interactions/2", "", "1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListMatches(t *testing.T) {
	router, gdb := setupRouter(t)

	require.NoError(t, gdb.Create(&db.Match{UsersKey: "1_2", UserAID: 1, UserBID: 2}).Error)

	rec := doRequest(t, router, http.MethodGet, "/api/matches", "", "1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Matches []struct {
			MatchID uint64 `json:"match_id"`
			User    struct {
				ID    uint64 `json:"id"`
				Phone string `json:"phone"`
			} `json:"user"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, uint64(2), resp.Matches[0].User.ID)
	assert.Equal(t, "+447700900002", resp.Matches[0].User.Phone)
}
