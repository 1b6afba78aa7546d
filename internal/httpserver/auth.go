// internal/httpserver/auth.go
//
// Authentication for the HTTP API.
// Responsibilities:
//   - Signup/login/logout/me endpoints backed by users.Repo.
//   - HS256 JWTs carried in a bearer header or an HttpOnly cookie.
//   - Anonymous id cookie so guests keep progress between requests.
//   - Claiming guest progress and history when a guest signs in.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hanzi-game/internal/users"
)

const anonCookieName = "hanzi_anon"

// authUser is placed into request context by auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

func currentUser(r *http.Request) *authUser {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	return me
}

// credentials is the signup/login payload.
type credentials struct {
	Username string `json:"username" validate:"required,min=3,max=24"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// mountAuthRoutes registers authentication + gated routes (/auth/*, /games/mine).
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)

	s.r.With(s.requireAuth()).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		_ = jsonEncode(w, currentUser(r))
	})

	s.r.With(s.requireAuth()).Get("/games/mine", func(w http.ResponseWriter, r *http.Request) {
		if s.History == nil {
			_ = jsonEncode(w, []any{})
			return
		}
		out, err := s.History.Mine(r.Context(), currentUser(r).ID, 0)
		if err != nil {
			log.Error().Err(err).Msg("list games")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		_ = jsonEncode(w, out)
	})
}

// handleSignup creates a user, sets the auth cookie and claims guest data.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if !decodeBody(w, r, &body, false) {
		return
	}
	u, err := s.Users.Create(r.Context(), body.Username, body.Password)
	if err != nil {
		var invalid *users.ValidationError
		switch {
		case errors.Is(err, users.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "username_taken")
		case errors.As(err, &invalid):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_signup", "message": invalid.Reason})
		default:
			log.Error().Err(err).Msg("create user")
			writeError(w, http.StatusInternalServerError, "db_error")
		}
		return
	}
	if !s.issueToken(w, u) {
		return
	}
	s.claimGuest(r.Context(), w, r, u.ID)
	_ = jsonEncode(w, u)
}

// handleLogin authenticates, sets the auth cookie and claims guest data.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if !decodeBody(w, r, &body, false) {
		return
	}
	u, err := s.Users.Authenticate(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	if !s.issueToken(w, u) {
		return
	}
	s.claimGuest(r.Context(), w, r, u.ID)
	_ = jsonEncode(w, map[string]any{"id": u.ID, "username": u.Username})
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setCookie(w, s.cookieName(), "", time.Time{}, -1)
	_ = jsonEncode(w, map[string]bool{"ok": true})
}

func (s *Server) issueToken(w http.ResponseWriter, u *users.User) bool {
	tok, exp, err := s.signJWT(u.ID, u.Username)
	if err != nil {
		log.Error().Err(err).Msg("sign jwt")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return false
	}
	s.setCookie(w, s.cookieName(), tok, exp, 0)
	return true
}

// claimGuest moves the caller's anonymous progress and history onto userID.
// Failures are logged; login still succeeds.
func (s *Server) claimGuest(ctx context.Context, w http.ResponseWriter, r *http.Request, userID string) {
	c, err := r.Cookie(anonCookieName)
	if err != nil || c.Value == "" {
		return
	}
	anon := c.Value
	if s.Progress != nil {
		if err := s.Progress.Claim(ctx, anon, userID); err != nil {
			log.Warn().Err(err).Str("user", userID).Msg("claim guest progress")
		}
	}
	if s.History != nil {
		if _, err := s.History.ClaimOwner(ctx, anon, userID); err != nil {
			log.Warn().Err(err).Str("user", userID).Msg("claim guest games")
		}
	}
}

// --------------------------- identity --------------------------------------

// ownerID returns the signed-in user's id, or the guest's anonymous id
// (issuing the cookie on first contact).
func (s *Server) ownerID(w http.ResponseWriter, r *http.Request) string {
	if me := currentUser(r); me != nil {
		return me.ID
	}
	return s.ensureAnonID(w, r)
}

// ensureAnonID returns an existing anon cookie or sets a new one.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := "anon-" + uuid.NewString()
	s.setCookie(w, anonCookieName, id, s.Now().Add(180*24*time.Hour), 0)
	return id
}

// --------------------------- middleware ------------------------------------

// withOptionalAuth decorates requests with user context if a valid JWT is present.
// It never 401s; used for routes where guests are allowed.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if me, err := s.authenticate(r); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, me))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth enforces a valid JWT and injects authUser into request context.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			me, err := s.authenticate(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, me)))
		})
	}
}

var errNoToken = errors.New("no token")

// authenticate validates the request's token and that its user still exists.
func (s *Server) authenticate(r *http.Request) (*authUser, error) {
	tokenStr := s.bearerOrCookie(r)
	if tokenStr == "" {
		return nil, errNoToken
	}
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret()), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	id, _ := claims["id"].(string)
	if id == "" || s.Users == nil {
		return nil, errors.New("invalid token")
	}
	u, err := s.Users.FindByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return &authUser{ID: u.ID, Username: u.Username}, nil
}

// ------------------------------ JWT & cookies ------------------------------

// signJWT creates an HS256 JWT with id/username and the configured expiry.
func (s *Server) signJWT(id, username string) (string, time.Time, error) {
	now := s.Now()
	ttl := s.cfg.JWTExpiry()
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	exp := now.Add(ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.jwtSecret()))
	return ss, exp, err
}

func (s *Server) jwtSecret() string {
	if s.cfg.JWTSecret == "" {
		return "dev_secret_change_me"
	}
	return s.cfg.JWTSecret
}

func (s *Server) cookieName() string {
	if s.cfg.CookieName == "" {
		return "hanzi_token"
	}
	return s.cfg.CookieName
}

// setCookie writes an HttpOnly cookie; Secure + SameSite=None in production.
func (s *Server) setCookie(w http.ResponseWriter, name, value string, exp time.Time, maxAge int) {
	secure := s.cfg.Production()
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
		MaxAge:   maxAge,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cookieName()); err == nil {
		return c.Value
	}
	return ""
}
