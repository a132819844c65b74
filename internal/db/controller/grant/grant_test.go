package grant

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/adminforge/adminforge/internal/db/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.UserGroup{},
		&models.ContentType{},
		&models.UserPermission{},
		&models.GroupPermission{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func seedFixtures(t *testing.T, db *gorm.DB) (*models.User, *models.Group, *models.ContentType) {
	t.Helper()

	user := &models.User{Username: "alice", Email: "alice@example.com", Active: true, Staff: true}
	require.NoError(t, db.Create(user).Error)

	group := &models.Group{Name: "editors"}
	require.NoError(t, db.Create(group).Error)

	ct := &models.ContentType{AppLabel: "blog", ModelSlug: "post", DottedName: "blog.post"}
	require.NoError(t, db.Create(ct).Error)

	return user, group, ct
}

func userGrantCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.UserPermission{}).Count(&count).Error)

	return count
}

func TestGrantToUserImpliesView(t *testing.T) {
	db := setupTestDB(t)
	user, _, ct := seedFixtures(t, db)

	require.NoError(t, GrantToUser(db, user.ID, &ct.ID, models.ActionChange))

	var actions []string
	require.NoError(t, db.Model(&models.UserPermission{}).
		Where("user_id = ?", user.ID).
		Order("action").
		Pluck("action", &actions).Error)

	assert.Equal(t, []string{"change", "view"}, actions)
}

func TestGrantToUserIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	user, _, ct := seedFixtures(t, db)

	require.NoError(t, GrantToUser(db, user.ID, &ct.ID, models.ActionView))
	require.NoError(t, GrantToUser(db, user.ID, &ct.ID, models.ActionView))

	assert.EqualValues(t, 1, userGrantCount(t, db))
}

func TestGrantGlobalSeparateFromResource(t *testing.T) {
	db := setupTestDB(t)
	user, _, ct := seedFixtures(t, db)

	require.NoError(t, GrantToUser(db, user.ID, nil, models.ActionView))
	require.NoError(t, GrantToUser(db, user.ID, &ct.ID, models.ActionView))

	assert.EqualValues(t, 2, userGrantCount(t, db), "global and per-resource grants are distinct rows")
}

func TestRevokeFromUser(t *testing.T) {
	db := setupTestDB(t)
	user, _, ct := seedFixtures(t, db)

	require.NoError(t, GrantToUser(db, user.ID, &ct.ID, models.ActionDelete))
	require.NoError(t, RevokeFromUser(db, user.ID, &ct.ID, models.ActionDelete))

	// the implied view grant stays behind
	assert.EqualValues(t, 1, userGrantCount(t, db))

	err := RevokeFromUser(db, user.ID, &ct.ID, models.ActionDelete)
	assert.ErrorIs(t, err, ErrGrantNotFound)
}

func TestGroupGrantRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	_, group, ct := seedFixtures(t, db)

	require.NoError(t, GrantToGroup(db, group.ID, &ct.ID, models.ActionChange))

	var count int64
	require.NoError(t, db.Model(&models.GroupPermission{}).Count(&count).Error)
	assert.EqualValues(t, 2, count, "change grant implies view")

	require.NoError(t, RevokeFromGroup(db, group.ID, &ct.ID, models.ActionChange))
	require.NoError(t, RevokeFromGroup(db, group.ID, &ct.ID, models.ActionView))

	err := RevokeFromGroup(db, group.ID, &ct.ID, models.ActionView)
	assert.ErrorIs(t, err, ErrGrantNotFound)
}

func TestInvalidInput(t *testing.T) {
	db := setupTestDB(t)
	user, _, _ := seedFixtures(t, db)

	assert.ErrorIs(t, GrantToUser(nil, user.ID, nil, models.ActionView), ErrDBNil)
	assert.ErrorIs(t, GrantToUser(db, user.ID, nil, "publish"), ErrInvalidAction)
	assert.ErrorIs(t, RevokeFromGroup(db, 1, nil, "publish"), ErrInvalidAction)
}
