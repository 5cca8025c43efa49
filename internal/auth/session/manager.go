package session

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AlibekovAA/album-catalog/internal/common/clock"
	"github.com/AlibekovAA/album-catalog/internal/common/constants"
	commonerrors "github.com/AlibekovAA/album-catalog/internal/common/errors"
	"github.com/AlibekovAA/album-catalog/internal/common/logger"
	userdomain "github.com/AlibekovAA/album-catalog/internal/user/domain"
)

const loginPath = "/login"

// UserLookup confirms that the user named by a session still exists.
type UserLookup interface {
	Get(ctx context.Context, id userdomain.ID) (userdomain.User, error)
}

// Flasher queues a one-shot message for the next rendered page.
type Flasher interface {
	AddFlash(w http.ResponseWriter, r *http.Request, category, message string)
}

type Config struct {
	Secret       string
	TTL          time.Duration
	CookieSecure bool
	Clock        clock.Clock
}

type Manager struct {
	issuer       *TokenIssuer
	users        UserLookup
	flasher      Flasher
	cookieSecure bool
	ttl          time.Duration
	log          *logger.Logger
}

func NewManager(cfg Config, users UserLookup, flasher Flasher, log *logger.Logger) *Manager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = constants.DefaultSessionTTL
	}
	return &Manager{
		issuer:       NewTokenIssuer(cfg.Secret, ttl, cfg.Clock),
		users:        users,
		flasher:      flasher,
		cookieSecure: cfg.CookieSecure,
		ttl:          ttl,
		log:          log,
	}
}

// Issue logs the user in by setting a fresh session cookie.
func (m *Manager) Issue(w http.ResponseWriter, r *http.Request, user userdomain.User) error {
	token, expiresAt, err := m.issuer.Issue(user)
	if err != nil {
		m.log.WithFields(r.Context(), logger.Fields{
			"user_id": int64(user.ID),
			"action":  "session_issue_failed",
		}).Errorf("session issue failed: %v", err)
		return commonerrors.ErrInternalError.WithCause(err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure(r),
		SameSite: http.SameSiteLaxMode,
	})

	m.log.WithFields(r.Context(), logger.Fields{
		"user_id": int64(user.ID),
		"action":  "session_issued",
	}).Debug("session issued")
	return nil
}

func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware resolves the session cookie into an AuthContext. Broken,
// expired or orphaned sessions become anonymous and their cookie is cleared.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac := m.resolve(w, r)
		next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), ac)))
	})
}

func (m *Manager) resolve(w http.ResponseWriter, r *http.Request) AuthContext {
	cookie, err := r.Cookie(constants.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return Anonymous()
	}

	claims, err := m.issuer.Parse(cookie.Value)
	if err != nil {
		m.log.WithFields(r.Context(), logger.Fields{
			"path":   r.URL.Path,
			"action": "session_invalid",
		}).Warnf("session rejected: %v", err)
		m.Clear(w, r)
		return Anonymous()
	}

	user, err := m.users.Get(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			m.log.WithFields(r.Context(), logger.Fields{
				"user_id": int64(claims.UserID),
				"action":  "session_user_gone",
			}).Info("session refers to a deleted user")
			m.Clear(w, r)
			return Anonymous()
		}
		m.log.WithFields(r.Context(), logger.Fields{
			"user_id": int64(claims.UserID),
			"action":  "session_lookup_failed",
		}).Errorf("session user lookup failed: %v", err)
		return Anonymous()
	}

	return Authenticated(Principal{ID: user.ID, Username: user.Username})
}

// RequireAuth sends anonymous visitors to the login page. The requested
// location is kept in ?next= for GET and HEAD only, since a replayed POST
// would lose its body.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()).IsAuthenticated() {
			next.ServeHTTP(w, r)
			return
		}

		if m.flasher != nil {
			m.flasher.AddFlash(w, r, "info", "Please log in to access this page.")
		}

		target := loginPath
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			target += "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	})
}

func (m *Manager) RedirectIfAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()).IsAuthenticated() {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Manager) secure(r *http.Request) bool {
	return m.cookieSecure || r.TLS != nil
}

// SafeNext returns next when it is a path on this site and "/" otherwise.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
