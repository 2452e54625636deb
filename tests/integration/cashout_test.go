package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcollier/fieldhunt/internal/models"
	"github.com/tcollier/fieldhunt/internal/repositories"
)

func TestCashoutRepository_Redeem_Success(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	testDB, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	defer testDB.Teardown(ctx)

	user, err := SeedUser(ctx, testDB.Pool, "player", "test password", false)
	require.NoError(t, err)
	require.NoError(t, SetBalance(ctx, testDB.Pool, user.ID, 10))

	token, err := SeedCashoutToken(ctx, testDB.Pool, user.ID, time.Now().Add(5*time.Minute))
	require.NoError(t, err)

	repo := repositories.NewCashoutRepository(testDB.DB)

	newBalance, err := repo.Redeem(ctx, token, 4, time.Now())

	require.NoError(t, err)
	assert.Equal(t, 6, newBalance)

	stored, err := repo.Get(ctx, token)
	require.NoError(t, err)
	assert.True(t, stored.Used)
	assert.NotNil(t, stored.UsedAt)
}

func TestCashoutRepository_Redeem_SecondAttemptSeesTokenUsed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	testDB, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	defer testDB.Teardown(ctx)

	user, err := SeedUser(ctx, testDB.Pool, "player", "test password", false)
	require.NoError(t, err)
	require.NoError(t, SetBalance(ctx, testDB.Pool, user.ID, 10))

	token, err := SeedCashoutToken(ctx, testDB.Pool, user.ID, time.Now().Add(5*time.Minute))
	require.NoError(t, err)

	repo := repositories.NewCashoutRepository(testDB.DB)

	_, err = repo.Redeem(ctx, token, 2, time.Now())
	require.NoError(t, err)

	_, err = repo.Redeem(ctx, token, 2, time.Now())
	assert.ErrorIs(t, err, models.ErrTokenUsed)

	// The balance only moved once.
	var balance int
	require.NoError(t, testDB.Pool.QueryRow(ctx,
		`SELECT balance FROM users WHERE id = $1`, user.ID).Scan(&balance))
	assert.Equal(t, 8, balance)
}

func TestCashoutRepository_Redeem_ExpiredToken(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	testDB, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	defer testDB.Teardown(ctx)

	user, err := SeedUser(ctx, testDB.Pool, "player", "test password", false)
	require.NoError(t, err)
	require.NoError(t, SetBalance(ctx, testDB.Pool, user.ID, 10))

	token, err := SeedCashoutToken(ctx, testDB.Pool, user.ID, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	repo := repositories.NewCashoutRepository(testDB.DB)

	_, err = repo.Redeem(ctx, token, 2, time.Now())
	assert.ErrorIs(t, err, models.ErrTokenExpired)

	var balance int
	require.NoError(t, testDB.Pool.QueryRow(ctx,
		`SELECT balance FROM users WHERE id = $1`, user.ID).Scan(&balance))
	assert.Equal(t, 10, balance)
}

func TestCashoutRepository_Redeem_AmountExceedsBalance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	testDB, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	defer testDB.Teardown(ctx)

	user, err := SeedUser(ctx, testDB.Pool, "player", "test password", false)
	require.NoError(t, err)
	require.NoError(t, SetBalance(ctx, testDB.Pool, user.ID, 10))

	token, err := SeedCashoutToken(ctx, testDB.Pool, user.ID, time.Now().Add(5*time.Minute))
	require.NoError(t, err)

	repo := repositories.NewCashoutRepository(testDB.DB)

	_, err = repo.Redeem(ctx, token, 11, time.Now())
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	// The denied attempt must not burn the token or move the balance.
	stored, err := repo.Get(ctx, token)
	require.NoError(t, err)
	assert.False(t, stored.Used)

	var balance int
	require.NoError(t, testDB.Pool.QueryRow(ctx,
		`SELECT balance FROM users WHERE id = $1`, user.ID).Scan(&balance))
	assert.Equal(t, 10, balance)
}

func TestCashoutRepository_Redeem_UnknownToken(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	testDB, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	defer testDB.Teardown(ctx)

	repo := repositories.NewCashoutRepository(testDB.DB)

	_, err = repo.Redeem(ctx, "never-issued", 1, time.Now())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCashoutRepository_Redeem_ConcurrentAttemptsHaveOneWinner(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	testDB, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	defer testDB.Teardown(ctx)

	user, err := SeedUser(ctx, testDB.Pool, "player", "test password", false)
	require.NoError(t, err)
	require.NoError(t, SetBalance(ctx, testDB.Pool, user.ID, 100))

	token, err := SeedCashoutToken(ctx, testDB.Pool, user.ID, time.Now().Add(5*time.Minute))
	require.NoError(t, err)

	repo := repositories.NewCashoutRepository(testDB.DB)

	const workers = 10
	errs := make(chan error, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Redeem(ctx, token, 5, time.Now())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	winners := 0
	for err := range errs {
		if err == nil {
			winners++
		} else {
			assert.True(t, errors.Is(err, models.ErrTokenUsed), "loser got %v", err)
		}
	}

	assert.Equal(t, 1, winners)

	var balance int
	require.NoError(t, testDB.Pool.QueryRow(ctx,
		`SELECT balance FROM users WHERE id = $1`, user.ID).Scan(&balance))
	assert.Equal(t, 95, balance)
}

func TestCashoutRepository_PurgeStaleLeavesActiveTokens(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	testDB, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	defer testDB.Teardown(ctx)

	user, err := SeedUser(ctx, testDB.Pool, "player", "test password", false)
	require.NoError(t, err)

	expired, err := SeedCashoutToken(ctx, testDB.Pool, user.ID, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	active, err := SeedCashoutToken(ctx, testDB.Pool, user.ID, time.Now().Add(5*time.Minute))
	require.NoError(t, err)

	repo := repositories.NewCashoutRepository(testDB.DB)

	require.NoError(t, repo.PurgeStale(ctx, user.ID, time.Now()))

	_, err = repo.Get(ctx, expired)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = repo.Get(ctx, active)
	assert.NoError(t, err)
}
