// Package oauth exchanges a GitHub authorization code for a verified
// identity. It performs no persistence and makes no authorization decision;
// both belong to the caller.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/marcus/code-playground/internal/config"
	"golang.org/x/oauth2"
)

var (
	ErrNotConfigured = errors.New("github oauth client is not configured")
	ErrExchange      = errors.New("github rejected the code exchange")
	ErrProfile       = errors.New("github profile is unusable")
	ErrNetwork       = errors.New("github request failed")
)

// Identity is the provider-verified outcome of a completed exchange.
type Identity struct {
	ProviderID string
	Email      string
	Handle     string
	AvatarURL  string
	Raw        json.RawMessage
}

type GithubExchanger struct {
	conf    *oauth2.Config
	apiBase string
}

func NewGithubExchanger(cfg *config.Config) *GithubExchanger {
	return &GithubExchanger{
		conf: &oauth2.Config{
			ClientID:     cfg.GithubClientID,
			ClientSecret: cfg.GithubClientSecret,
			RedirectURL:  cfg.GithubRedirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.GithubAuthURL,
				TokenURL: cfg.GithubTokenURL,
			},
		},
		apiBase: cfg.GithubAPIBaseURL,
	}
}

// AuthCodeURL builds the consent-screen URL the popup navigates to.
func (g *GithubExchanger) AuthCodeURL() (string, error) {
	if g.conf.ClientID == "" {
		return "", ErrNotConfigured
	}
	return g.conf.AuthCodeURL(""), nil
}

// Exchange runs the three provider round trips: code for token, token for
// profile, token for the email list. The email list is fetched even when the
// profile carries an email, because GitHub withholds the primary email from
// the profile response for most accounts.
func (g *GithubExchanger) Exchange(ctx context.Context, code string) (*Identity, error) {
	if g.conf.ClientID == "" || g.conf.ClientSecret == "" {
		return nil, ErrNotConfigured
	}
	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", ErrNotConfigured)
	}

	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		var urlErr *url.Error
		switch {
		case errors.As(err, &retrieveErr):
			return nil, fmt.Errorf("%w: %v", ErrExchange, err)
		case errors.As(err, &urlErr):
			return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrExchange, err)
		}
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: response carried no access token", ErrExchange)
	}

	client := g.conf.Client(ctx, token)

	var profile struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		AvatarURL string `json:"avatar_url"`
		Email     string `json:"email"`
	}
	raw, err := g.getJSON(ctx, client, "/user", &profile)
	if err != nil {
		return nil, err
	}

	var emails []struct {
		Email   string `json:"email"`
		Primary bool   `json:"primary"`
	}
	if _, err := g.getJSON(ctx, client, "/user/emails", &emails); err != nil {
		return nil, err
	}

	email := ""
	for _, e := range emails {
		if e.Primary {
			email = e.Email
			break
		}
	}
	if email == "" && len(emails) > 0 {
		email = emails[0].Email
	}
	if email == "" {
		email = profile.Email
	}
	if email == "" {
		return nil, fmt.Errorf("%w: no email on the account", ErrProfile)
	}

	return &Identity{
		ProviderID: strconv.FormatInt(profile.ID, 10),
		Email:      email,
		Handle:     profile.Login,
		AvatarURL:  profile.AvatarURL,
		Raw:        raw,
	}, nil
}

func (g *GithubExchanger) getJSON(ctx context.Context, client *http.Client, path string, v interface{}) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiBase+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrNetwork, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrNetwork, path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s returned %d", ErrProfile, path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrProfile, path, err)
	}
	return body, nil
}
