package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rafaeltorres/user-registry/internal/domain"
	"github.com/rafaeltorres/user-registry/internal/repository/sqlite"
	"github.com/rafaeltorres/user-registry/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_CRUD(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := sqlite.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user := &domain.User{
		ID:          uuid.New(),
		Name:        "João Pereira",
		Sex:         domain.SexMale,
		Email:       "joao@example.com",
		BirthDate:   time.Date(1980, 1, 15, 0, 0, 0, 0, time.UTC),
		Nationality: "Brasileira",
		Birthplace:  "Recife",
		CPF:         "11144477735",
	}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Name, got.Name)
	assert.Equal(t, user.CPF, got.CPF)
	assert.False(t, got.CreatedAt.IsZero())

	got, err = repo.GetByEmail(ctx, "joao@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got.Name = "João P. Santos"
	require.NoError(t, repo.Update(ctx, got))

	updated, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "João P. Santos", updated.Name)

	require.NoError(t, repo.Delete(ctx, user.ID))

	_, err = repo.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_DeleteMissing(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := sqlite.NewUserRepository(testDB.DB)

	err := repo.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_Exists(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := sqlite.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithEmail("exists@example.com").
		WithCPF("12345678909").
		Build(t, testDB.DB)
	_ = user

	exists, err := repo.EmailExists(ctx, "exists@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.EmailExists(ctx, "other@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.CPFExists(ctx, "12345678909")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.CPFExists(ctx, "11144477735")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_SearchByName(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := sqlite.NewUserRepository(testDB.DB)
	ctx := context.Background()

	testutil.NewUserBuilder().WithName("Ana Clara Souza").Build(t, testDB.DB)
	testutil.NewUserBuilder().WithName("Mariana Lima").Build(t, testDB.DB)
	testutil.NewUserBuilder().WithName("Pedro Alves").Build(t, testDB.DB)

	// Substring match
	results, err := repo.SearchByName(ctx, "ana")
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = repo.SearchByName(ctx, "Pedro")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = repo.SearchByName(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestUserRepository_SetRefreshToken(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := sqlite.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	expires := time.Now().Add(7 * 24 * time.Hour).UTC()

	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, "token-1", expires))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "token-1", got.RefreshToken)
	require.NotNil(t, got.RefreshTokenExpiresAt)
	assert.WithinDuration(t, expires, *got.RefreshTokenExpiresAt, time.Second)

	err = repo.SetRefreshToken(ctx, uuid.New(), "token-2", expires)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_RotateRefreshToken(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := sqlite.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithRefreshToken("old-token", time.Now().Add(time.Hour)).
		Build(t, testDB.DB)

	expires := time.Now().Add(7 * 24 * time.Hour)
	require.NoError(t, repo.RotateRefreshToken(ctx, user.ID, "old-token", "new-token", expires))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-token", got.RefreshToken)

	// The swap is guarded on the current value; a second rotation against
	// the already-replaced token must not succeed.
	err = repo.RotateRefreshToken(ctx, user.ID, "old-token", "even-newer", expires)
	assert.ErrorIs(t, err, domain.ErrRefreshTokenMismatch)

	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-token", got.RefreshToken)
}

func TestUserRepository_AddressRoundTrip(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := sqlite.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithAddress().Build(t, testDB.DB)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, got.HasAddress())
	assert.Equal(t, "Rua das Flores", got.Address.Street)
	assert.Equal(t, "PR", got.Address.State)
	assert.Equal(t, "80010-000", got.Address.PostalCode)
}
