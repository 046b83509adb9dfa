package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/marcus/code-playground/internal/domain"
	"github.com/marcus/code-playground/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileHandler_UpdateNickname(t *testing.T) {
	ts := testutil.NewTestServer(t)
	testutil.AdmitEmail(t, ts.DB.DB, ts.Github.PrimaryEmail())
	cookie := ts.Login(t)

	t.Run("requires a session", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, ts.APIURL("/users/me/nickname"), map[string]string{"nickname": "custom"}, nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})

	t.Run("empty nickname is a 400", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, ts.APIURL("/users/me/nickname"), map[string]string{"nickname": "   "}, cookie)
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Nickname")
	})

	t.Run("updates the stored nickname", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, ts.APIURL("/users/me/nickname"), map[string]string{"nickname": "custom"}, cookie)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var user domain.User
		testutil.AssertJSONResponse(t, resp, &user)
		assert.Equal(t, "custom", user.Nickname)

		stored, err := ts.Repos.User.GetByID(context.Background(), "4242")
		require.NoError(t, err)
		assert.Equal(t, "custom", stored.Nickname)
	})

	t.Run("existing session keeps its issuance-time nickname", func(t *testing.T) {
		// The validator never re-queries storage, so the change only shows
		// up after the next login.
		req, err := http.NewRequest(http.MethodGet, ts.APIURL("/auth/me"), nil)
		require.NoError(t, err)
		req.AddCookie(cookie)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		var identity domain.Identity
		testutil.AssertJSONResponse(t, resp, &identity)
		assert.Equal(t, "octocat", identity.Nickname)

		// Logging in again re-issues with the fresh snapshot.
		fresh := ts.Login(t)
		req2, err := http.NewRequest(http.MethodGet, ts.APIURL("/auth/me"), nil)
		require.NoError(t, err)
		req2.AddCookie(fresh)

		resp2, err := http.DefaultClient.Do(req2)
		require.NoError(t, err)
		defer resp2.Body.Close()

		var refreshed domain.Identity
		testutil.AssertJSONResponse(t, resp2, &refreshed)
		assert.Equal(t, "custom", refreshed.Nickname)
	})
}
