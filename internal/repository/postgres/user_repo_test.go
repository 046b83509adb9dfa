package postgres_test

import (
	"context"
	"sync"
	"testing"

	"github.com/marcus/code-playground/internal/domain"
	"github.com/marcus/code-playground/internal/repository/postgres"
	"github.com/marcus/code-playground/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Upsert(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("creates on first login", func(t *testing.T) {
		testDB.Truncate(t)

		user, err := repo.Upsert(ctx, &domain.User{
			ID:        "gh-100",
			Email:     "a@x.com",
			Nickname:  "octocat",
			AvatarURL: "https://avatars.test/a.png",
		})
		require.NoError(t, err)
		assert.Equal(t, "gh-100", user.ID)
		assert.Equal(t, "octocat", user.Nickname)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("keeps id and nickname on later logins", func(t *testing.T) {
		testDB.Truncate(t)

		first, err := repo.Upsert(ctx, &domain.User{
			ID:       "gh-100",
			Email:    "a@x.com",
			Nickname: "octocat",
		})
		require.NoError(t, err)

		// Same account logs in again with a renamed handle and a new avatar.
		second, err := repo.Upsert(ctx, &domain.User{
			ID:        "gh-100",
			Email:     "a@x.com",
			Nickname:  "newhandle",
			AvatarURL: "https://avatars.test/new.png",
		})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "octocat", second.Nickname, "nickname must stay sticky")
		assert.Equal(t, "https://avatars.test/new.png", second.AvatarURL, "avatar refreshes at login")

		stored, err := repo.GetByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, "octocat", stored.Nickname)
	})

	t.Run("nickname edits survive the next login", func(t *testing.T) {
		testDB.Truncate(t)

		_, err := repo.Upsert(ctx, &domain.User{ID: "gh-100", Email: "a@x.com", Nickname: "octocat"})
		require.NoError(t, err)

		_, err = repo.UpdateNickname(ctx, "gh-100", "custom")
		require.NoError(t, err)

		again, err := repo.Upsert(ctx, &domain.User{ID: "gh-100", Email: "a@x.com", Nickname: "newhandle"})
		require.NoError(t, err)
		assert.Equal(t, "custom", again.Nickname)
	})
}

func TestUserRepository_Upsert_Concurrent(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	// Two simultaneous first logins for a never-seen email must converge on
	// a single row; the loser falls back to a read instead of erroring.
	const writers = 8
	results := make([]*domain.User, writers)
	errs := make([]error, writers)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = repo.Upsert(ctx, &domain.User{
				ID:       "gh-500",
				Email:    "race@x.com",
				Nickname: "racer",
			})
		}(i)
	}
	wg.Wait()

	for i := 0; i < writers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "gh-500", results[i].ID)
	}

	var count int64
	require.NoError(t, testDB.DB.Model(&domain.User{}).Where("email = ?", "race@x.com").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUserRepository_UpdateNickname_MissingUser(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)

	_, err := repo.UpdateNickname(context.Background(), "gh-missing", "anything")
	assert.Error(t, err)
}
