package mysql

import (
	"context"
	"testing"

	"yatube/internal/model"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_FollowIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := &FollowRepository{DB: db}
	ctx := context.Background()
	follower := testutil.CreateUser(t, db, "follower")
	author := testutil.CreateUser(t, db, "author")

	changed, err := repo.Follow(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.Follow(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	var edges int64
	require.NoError(t, db.Model(&model.Follow{}).Count(&edges).Error)
	assert.Equal(t, int64(1), edges)

	var f, a model.User
	require.NoError(t, db.First(&f, follower.ID).Error)
	require.NoError(t, db.First(&a, author.ID).Error)
	assert.Equal(t, int64(1), f.FollowingCount)
	assert.Equal(t, int64(1), a.FollowerCount)

	var events []model.SocialOutbox
	require.NoError(t, db.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, "follow", events[0].EventType)
}

func TestFollowRepository_Unfollow(t *testing.T) {
	db := testutil.NewDB(t)
	repo := &FollowRepository{DB: db}
	ctx := context.Background()
	follower := testutil.CreateUser(t, db, "follower")
	author := testutil.CreateUser(t, db, "author")

	changed, err := repo.Unfollow(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, changed, "unfollow without an edge is a no-op")

	_, err = repo.Follow(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	ok, err := repo.IsFollowing(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	changed, err = repo.Unfollow(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	ok, err = repo.IsFollowing(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	var a model.User
	require.NoError(t, db.First(&a, author.ID).Error)
	assert.Zero(t, a.FollowerCount)

	var n int64
	require.NoError(t, db.Model(&model.SocialOutbox{}).Where("event_type = ?", "unfollow").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestOutboxRepository_RetryAndSuccess(t *testing.T) {
	db := testutil.NewDB(t)
	repo := &OutboxRepository{DB: db}
	ctx := context.Background()
	ob := &model.SocialOutbox{EventType: "follow", Follower: 1, Followee: 2, Payload: "{}"}
	require.NoError(t, db.Create(ob).Error)

	list, err := repo.List(ctx, 10, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, repo.RetryUpdate(ctx, ob.ID))
	list, err = repo.List(ctx, 10, 2)
	require.NoError(t, err)
	require.Len(t, list, 1, "failed rows under the retry limit are listed again")

	require.NoError(t, repo.RetryUpdate(ctx, ob.ID))
	list, err = repo.List(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, list)

	ob2 := &model.SocialOutbox{EventType: "unfollow", Follower: 1, Followee: 2, Payload: "{}"}
	require.NoError(t, db.Create(ob2).Error)
	require.NoError(t, repo.SuccessUpdate(ctx, ob2.ID))
	list, err = repo.List(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFollowCountReconcilerRepo(t *testing.T) {
	db := testutil.NewDB(t)
	repo := &FollowCountReconcilerRepo{DB: db}
	ctx := context.Background()
	u1 := testutil.CreateUser(t, db, "u1")
	u2 := testutil.CreateUser(t, db, "u2")
	require.NoError(t, db.Create(&model.Follow{UserID: u1.ID, AuthorID: u2.ID}).Error)

	list, last, err := repo.ReconcileList(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, u1.ID, last)

	list, last, err = repo.ReconcileList(ctx, 10, last)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, u2.ID, last)

	list, _, err = repo.ReconcileList(ctx, 10, last)
	require.NoError(t, err)
	assert.Empty(t, list)

	n, err := repo.RealFollowing(ctx, u1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = repo.RealFollowers(ctx, u2.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
