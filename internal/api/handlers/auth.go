package handlers

import (
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/marcus/code-playground/internal/api/middleware"
	"github.com/marcus/code-playground/internal/config"
	"github.com/marcus/code-playground/internal/oauth"
	"github.com/marcus/code-playground/internal/service"
)

// successPage runs in the popup after a completed login. It signals the
// opener and closes itself; the target origin is pinned so the signal cannot
// leak to an unrelated embedding page.
var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Login complete</title></head>
<body>
<p>Login complete. This window will close itself.</p>
<script>
  if (window.opener) {
    window.opener.postMessage({ type: "OAUTH_AUTH_SUCCESS" }, {{.TargetOrigin}});
  }
  window.close();
</script>
</body>
</html>
`))

// deniedPage closes itself without ever posting a success signal.
var deniedPage = template.Must(template.New("denied").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Not admitted</title></head>
<body>
<p>The account {{.Email}} is not on the admission list for this playground.</p>
<p>Ask an operator to admit your email, then try again.</p>
<script>
  setTimeout(function () { window.close(); }, 3000);
</script>
</body>
</html>
`))

type AuthHandler struct {
	authService *service.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

// GithubURL hands the popup its consent-screen destination.
func (h *AuthHandler) GithubURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.authService.LoginURL()
	if err != nil {
		log.Printf("ERROR [AuthHandler.GithubURL] %v", err)
		http.Error(w, "GitHub OAuth is not configured", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"url": url})
}

// GithubCallback lands the provider redirect inside the popup: exchange the
// code, check admission, upsert the user, bind the session cookie, then
// render the page that signals the opener.
func (h *AuthHandler) GithubCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusInternalServerError)
		return
	}

	user, token, err := h.authService.LoginWithCode(r.Context(), code)
	if err != nil {
		var denied *service.AdmissionDeniedError
		if errors.As(err, &denied) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusForbidden)
			deniedPage.Execute(w, map[string]string{"Email": denied.Email})
			return
		}
		if errors.Is(err, oauth.ErrNotConfigured) {
			http.Error(w, "GitHub OAuth is not configured", http.StatusInternalServerError)
			return
		}
		log.Printf("ERROR [AuthHandler.GithubCallback] login failed: %v", err)
		http.Error(w, "Login failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, token)
	log.Printf("INFO [AuthHandler.GithubCallback] user %s logged in", user.ID)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	successPage.Execute(w, map[string]string{"TargetOrigin": h.cfg.FrontendOrigin})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(identity)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// The cookie must be deliverable on a cross-origin provider redirect, so
// SameSite=None; HttpOnly+Secure compensate. The clearing cookie carries the
// same attributes because a mismatch silently fails to clear in some
// clients.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.authService.SessionTTL() / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
