package users

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cropcareapp/cropcare-backend/pkg/db"
	"github.com/cropcareapp/cropcare-backend/pkg/db/models"
	"github.com/cropcareapp/cropcare-backend/pkg/enums"
	"github.com/cropcareapp/cropcare-backend/pkg/pagination"
	"github.com/google/uuid"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))
	return conn
}

func seedUser(t *testing.T, repo *Repository, username, email string) *models.User {
	t.Helper()
	user, err := repo.Create(context.Background(), CreateUserDTO{
		Username:     username,
		Email:        email,
		PasswordHash: "x",
	})
	require.NoError(t, err)
	return user
}

func TestCreateAssignsIDAndDefaultRole(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	user := seedUser(t, repo, "amara", "amara@example.com")

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, enums.RoleUser, user.Role)
}

func TestCreateRejectsDuplicateUsernameAndEmail(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	seedUser(t, repo, "amara", "amara@example.com")

	_, err := repo.Create(context.Background(), CreateUserDTO{
		Username: "amara", Email: "other@example.com", PasswordHash: "x",
	})
	assert.True(t, db.IsUniqueViolation(err, "idx_users_username"), "expected username unique violation, got %v", err)

	_, err = repo.Create(context.Background(), CreateUserDTO{
		Username: "beatrix", Email: "amara@example.com", PasswordHash: "x",
	})
	assert.True(t, db.IsUniqueViolation(err, "idx_users_email"), "expected email unique violation, got %v", err)
}

func TestFindByUsernameAndID(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	created := seedUser(t, repo, "amara", "amara@example.com")

	byName, err := repo.FindByUsername(context.Background(), "amara")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byID, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "amara", byID.Username)

	_, err = repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateByIDAppliesPatchOnly(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	created := seedUser(t, repo, "amara", "amara@example.com")

	mobile := "+15550001111"
	require.NoError(t, repo.UpdateByID(context.Background(), created.ID, UpdateUserDTO{Mobile: &mobile}))

	got, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Mobile)
	assert.Equal(t, mobile, *got.Mobile)
	assert.Equal(t, "amara@example.com", got.Email)

	err = repo.UpdateByID(context.Background(), uuid.New(), UpdateUserDTO{Mobile: &mobile})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdatePasswordByUsername(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	created := seedUser(t, repo, "amara", "amara@example.com")

	require.NoError(t, repo.UpdatePasswordByUsername(context.Background(), "amara", "newhash"))
	got, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.PasswordHash)

	err = repo.UpdatePasswordByUsername(context.Background(), "ghost", "h")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteByIDAndListAll(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	first := seedUser(t, repo, "amara", "amara@example.com")
	seedUser(t, repo, "beatrix", "beatrix@example.com")

	list, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, repo.DeleteByID(context.Background(), first.ID))
	list, err = repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "beatrix", list[0].Username)

	err = repo.DeleteByID(context.Background(), first.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListPageOrdersAndResumes(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)

	base := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	for i, name := range []string{"amara", "beatrix", "chidi"} {
		u := seedUser(t, repo, name, name+"@example.com")
		require.NoError(t, conn.Model(&models.User{}).
			Where("id = ?", u.ID).
			UpdateColumn("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	first, err := repo.ListPage(context.Background(), nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "amara", first[0].Username)
	assert.Equal(t, "beatrix", first[1].Username)

	cursor := &pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID}
	rest, err := repo.ListPage(context.Background(), cursor, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "chidi", rest[0].Username)
}
