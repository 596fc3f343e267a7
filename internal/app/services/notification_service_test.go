package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/websocket"
)

func TestNotificationService_NotifyPersistsAndPushes(t *testing.T) {
	db := newMemDB()
	pusher := &recordingPusher{}
	svc := NewNotificationService(memNotifications{db}, pusher, testLogger)
	ctx := context.Background()

	svc.Notify(ctx, 7, models.NotifyApplicationStatus, "approved", map[string]int64{"applicationId": 3})

	require.Len(t, db.notifications, 1)
	stored := db.notifications[0]
	assert.Equal(t, int64(7), stored.AccountID)
	assert.JSONEq(t, `{"applicationId":3}`, string(stored.Payload))

	require.Len(t, pusher.frames, 1)
	assert.Equal(t, int64(7), pusher.frames[0].AccountID)
	assert.Equal(t, websocket.FrameNotification, pusher.frames[0].Kind)

	// Unserialisable payloads are dropped, the message still goes out
	svc.Notify(ctx, 7, models.NotifyApplicationComment, "comment", map[string]interface{}{"bad": func() {}})
	require.Len(t, db.notifications, 2)
	assert.Nil(t, db.notifications[1].Payload)
}

func TestNotificationService_ListAndMarkRead(t *testing.T) {
	db := newMemDB()
	svc := NewNotificationService(memNotifications{db}, nil, testLogger)
	ctx := context.Background()

	for _, msg := range []string{"one", "two", "three"} {
		svc.Notify(ctx, 7, models.NotifyApplicationStatus, msg, nil)
	}
	svc.Notify(ctx, 8, models.NotifyApplicationStatus, "elsewhere", nil)

	all, err := svc.List(ctx, 7, false, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "three", all[0].Message)

	limited, err := svc.List(ctx, 7, false, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	require.NoError(t, svc.MarkRead(ctx, 7, all[0].ID))
	require.NoError(t, svc.MarkRead(ctx, 7, all[0].ID))

	unread, err := svc.List(ctx, 7, true, 0)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	assert.ErrorIs(t, svc.MarkRead(ctx, 8, all[1].ID), apperrors.ErrNotificationNotFound)
	assert.ErrorIs(t, svc.MarkRead(ctx, 7, 0), apperrors.ErrValidationFailed)

	_, err = svc.List(ctx, 0, false, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestStorageService_CacheAside(t *testing.T) {
	db := newMemDB()
	repo := &memStorage{memDB: db}
	c := newMemCache()
	svc := NewClientStorageService(repo, c, 0, testLogger)
	ctx := context.Background()

	_, err := svc.Get(ctx, 7, "dashboard.layout")
	assert.ErrorIs(t, err, apperrors.ErrStorageKeyNotFound)

	_, err = svc.Put(ctx, 7, "dashboard.layout", mustJSON(t, map[string]string{"theme": "dark"}))
	require.NoError(t, err)

	first, err := svc.Get(ctx, 7, "dashboard.layout")
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark"}`, string(first.Value))
	readsAfterFill := repo.reads

	second, err := svc.Get(ctx, 7, "dashboard.layout")
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark"}`, string(second.Value))
	assert.Equal(t, readsAfterFill, repo.reads)

	// Writes invalidate the cached copy
	_, err = svc.Put(ctx, 7, "dashboard.layout", json.RawMessage(`{"theme":"light"}`))
	require.NoError(t, err)
	third, err := svc.Get(ctx, 7, "dashboard.layout")
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"light"}`, string(third.Value))

	_, err = svc.Get(ctx, 8, "dashboard.layout")
	assert.ErrorIs(t, err, apperrors.ErrStorageKeyNotFound)
}

func TestStorageService_WriteDuringFillIsNotCached(t *testing.T) {
	repo := &memStorage{memDB: newMemDB()}
	c := newMemCache()
	svc := NewClientStorageService(repo, c, time.Minute, testLogger)
	ctx := context.Background()

	_, err := svc.Put(ctx, 7, "dashboard.layout", json.RawMessage(`{"theme":"dark"}`))
	require.NoError(t, err)

	repo.afterRead = func() {
		_, err := svc.Put(ctx, 7, "dashboard.layout", json.RawMessage(`{"theme":"light"}`))
		require.NoError(t, err)
	}
	old, err := svc.Get(ctx, 7, "dashboard.layout")
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark"}`, string(old.Value))

	_, cached := c.items[storageCacheKey(7, "dashboard.layout")]
	assert.False(t, cached)

	current, err := svc.Get(ctx, 7, "dashboard.layout")
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"light"}`, string(current.Value))
	readsAfterFill := repo.reads

	again, err := svc.Get(ctx, 7, "dashboard.layout")
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"light"}`, string(again.Value))
	assert.Equal(t, readsAfterFill, repo.reads)
}

func TestStorageService_Validation(t *testing.T) {
	svc := NewClientStorageService(&memStorage{memDB: newMemDB()}, nil, 0, testLogger)
	ctx := context.Background()

	_, err := svc.Put(ctx, 7, "bad key!", json.RawMessage(`1`))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Put(ctx, 7, "ok", json.RawMessage(`{not json`))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Get(ctx, 7, "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	entry, err := svc.Put(ctx, 7, "ok", json.RawMessage(`[1,2]`))
	require.NoError(t, err)
	assert.Equal(t, "ok", entry.Key)
}

func TestStatsService_CachesCounts(t *testing.T) {
	repo := &fakeStats{stats: models.PortalStats{Programs: 4, Institutions: 2, Students: 10, Countries: 3}}
	svc := NewStatsService(repo, newMemCache(), 0, testLogger)
	ctx := context.Background()

	first, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, first.Programs)

	second, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, *first, *second)
	assert.Equal(t, 1, repo.calls)

	uncached := NewStatsService(repo, nil, 0, testLogger)
	_, err = uncached.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestStatsService_PropagatesErrors(t *testing.T) {
	repo := &fakeStats{err: assert.AnError}
	svc := NewStatsService(repo, newMemCache(), 0, testLogger)

	_, err := svc.Counts(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}
