package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/marcus/code-playground/internal/api/middleware"
	"github.com/marcus/code-playground/internal/domain"
	"github.com/marcus/code-playground/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_GithubURL(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.APIURL("/auth/github/url"))
	require.NoError(t, err)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var result map[string]string
	testutil.AssertJSONResponse(t, resp, &result)
	assert.Contains(t, result["url"], "/login/oauth/authorize")
	assert.Contains(t, result["url"], "client_id=test-client-id")
}

func TestAuthHandler_GithubCallback(t *testing.T) {
	ts := testutil.NewTestServer(t)

	t.Run("admitted login sets the session cookie and signals the opener", func(t *testing.T) {
		ts.DB.Truncate(t)
		testutil.AdmitEmail(t, ts.DB.DB, ts.Github.PrimaryEmail())

		resp, err := http.Get(ts.APIURL("/auth/github/callback?code=good-code"))
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		body := testutil.ReadBody(t, resp)
		assert.Contains(t, body, "OAUTH_AUTH_SUCCESS")
		// The template escapes slashes in the JS string, so match the host.
		assert.Contains(t, body, "localhost:5173")

		var cookie *http.Cookie
		for _, c := range resp.Cookies() {
			if c.Name == middleware.SessionCookieName {
				cookie = c
			}
		}
		require.NotNil(t, cookie, "session cookie must be set")
		assert.True(t, cookie.HttpOnly)
		assert.True(t, cookie.Secure)
		assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
		assert.Equal(t, 3600, cookie.MaxAge)

		// The user row exists with provider id and handle.
		user, err := ts.Repos.User.GetByEmail(context.Background(), ts.Github.PrimaryEmail())
		require.NoError(t, err)
		assert.Equal(t, "4242", user.ID)
		assert.Equal(t, "octocat", user.Nickname)
	})

	t.Run("unadmitted login gets the rejection page and no cookie", func(t *testing.T) {
		ts.DB.Truncate(t)
		testutil.AdmitEmail(t, ts.DB.DB, "someone-else@x.com")

		resp, err := http.Get(ts.APIURL("/auth/github/callback?code=good-code"))
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusForbidden)

		body := testutil.ReadBody(t, resp)
		assert.Contains(t, body, ts.Github.PrimaryEmail())
		assert.NotContains(t, body, "OAUTH_AUTH_SUCCESS")
		assert.Empty(t, resp.Cookies(), "denied logins must not receive a cookie")

		var count int64
		require.NoError(t, ts.DB.DB.Model(&domain.User{}).Count(&count).Error)
		assert.EqualValues(t, 0, count)
	})

	t.Run("missing code is a server error", func(t *testing.T) {
		resp, err := http.Get(ts.APIURL("/auth/github/callback"))
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusInternalServerError)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	ts := testutil.NewTestServer(t)

	t.Run("returns the session identity", func(t *testing.T) {
		ts.DB.Truncate(t)
		testutil.AdmitEmail(t, ts.DB.DB, ts.Github.PrimaryEmail())
		cookie := ts.Login(t)

		req, err := http.NewRequest(http.MethodGet, ts.APIURL("/auth/me"), nil)
		require.NoError(t, err)
		req.AddCookie(cookie)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var identity domain.Identity
		testutil.AssertJSONResponse(t, resp, &identity)
		assert.Equal(t, "4242", identity.ID)
		assert.Equal(t, ts.Github.PrimaryEmail(), identity.Email)
		assert.Equal(t, "octocat", identity.Nickname)
	})

	t.Run("no cookie", func(t *testing.T) {
		resp, err := http.Get(ts.APIURL("/auth/me"))
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})

	t.Run("tampered cookie", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.APIURL("/auth/me"), nil)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "forged"})

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Post(ts.APIURL("/auth/logout"), "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var result map[string]bool
	testutil.AssertJSONResponse(t, resp, &result)
	assert.True(t, result["success"])

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "logout must send a clearing cookie")
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
	// Attributes must match the ones used at issuance or some clients keep
	// the stale cookie.
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
}
