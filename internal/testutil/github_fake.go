package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marcus/code-playground/internal/config"
)

type GithubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	Email     string `json:"email"`
}

type GithubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// FakeGithub stands in for the three provider endpoints the login flow
// touches: the token exchange, the profile and the email list. Mutate its
// fields before driving a login to shape the provider's answers.
type FakeGithub struct {
	Server      *httptest.Server
	User        GithubUser
	Emails      []GithubEmail
	AccessToken string
	RejectCode  bool
}

func NewFakeGithub(t *testing.T) *FakeGithub {
	t.Helper()

	f := &FakeGithub{
		User: GithubUser{
			ID:        4242,
			Login:     "octocat",
			AvatarURL: "https://avatars.test/octocat.png",
		},
		Emails: []GithubEmail{
			{Email: "octocat@example.com", Primary: true, Verified: true},
		},
		AccessToken: "fake-access-token",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", f.handleToken)
	mux.HandleFunc("/user", f.handleUser)
	mux.HandleFunc("/user/emails", f.handleEmails)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)

	return f
}

// Apply points a config at the fake provider.
func (f *FakeGithub) Apply(cfg *config.Config) {
	cfg.GithubClientID = "test-client-id"
	cfg.GithubClientSecret = "test-client-secret"
	cfg.GithubRedirectURL = "http://localhost:8080/api/auth/github/callback"
	cfg.GithubAuthURL = f.Server.URL + "/login/oauth/authorize"
	cfg.GithubTokenURL = f.Server.URL + "/login/oauth/access_token"
	cfg.GithubAPIBaseURL = f.Server.URL
}

// PrimaryEmail returns the email a successful login will resolve to.
func (f *FakeGithub) PrimaryEmail() string {
	for _, e := range f.Emails {
		if e.Primary {
			return e.Email
		}
	}
	if len(f.Emails) > 0 {
		return f.Emails[0].Email
	}
	return f.User.Email
}

func (f *FakeGithub) handleToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if f.RejectCode {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "bad_verification_code"})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{
		"access_token": f.AccessToken,
		"token_type":   "bearer",
	})
}

func (f *FakeGithub) handleUser(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+f.AccessToken {
		http.Error(w, "Bad credentials", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(f.User)
}

func (f *FakeGithub) handleEmails(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+f.AccessToken {
		http.Error(w, "Bad credentials", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(f.Emails)
}
