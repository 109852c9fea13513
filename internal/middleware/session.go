package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/2beens/onthego/internal/session"
	"github.com/2beens/onthego/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const SessionCookieName = "onthego_session"

type sessionCtxKey struct{}

type SessionMiddlewareHandler struct {
	store         *session.Store
	secureCookies bool
	cookieMaxAge  time.Duration
}

func NewSessionMiddlewareHandler(store *session.Store, secureCookies bool, cookieMaxAge time.Duration) *SessionMiddlewareHandler {
	return &SessionMiddlewareHandler{
		store:         store,
		secureCookies: secureCookies,
		cookieMaxAge:  cookieMaxAge,
	}
}

// SessionFromContext returns the session attached by Attach or Resolve.
func SessionFromContext(ctx context.Context) (*session.State, bool) {
	state, ok := ctx.Value(sessionCtxKey{}).(*session.State)
	return state, ok && state != nil
}

func ContextWithSession(ctx context.Context, state *session.State) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, state)
}

// Attach resolves the session cookie, starting a fresh logged out session
// when the browser has none or its session expired.
func (h *SessionMiddlewareHandler) Attach() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.session")

			if state, ok := h.existing(w, r); ok {
				span.SetStatus(codes.Ok, "existing")
				span.End()
				next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), state)))
				return
			}

			state, err := h.store.Start()
			if err != nil {
				log.Errorf("[session middleware] start session => %s: %s", r.URL.Path, err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "start-session")
				span.End()
				http.Error(w, "failed to start session", http.StatusInternalServerError)
				return
			}

			h.setCookie(w, state.Token)
			span.SetStatus(codes.Ok, "started")
			span.End()

			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), state)))
		})
	}
}

// Resolve attaches the session named by the cookie, if it is still alive.
// It never starts a new session.
func (h *SessionMiddlewareHandler) Resolve() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if state, ok := h.existing(w, r); ok {
				r = r.WithContext(ContextWithSession(r.Context(), state))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// existing looks up the cookie session and pushes the cookie expiry forward,
// so it lives as long as the server side session.
func (h *SessionMiddlewareHandler) existing(w http.ResponseWriter, r *http.Request) (*session.State, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, false
	}
	state, ok := h.store.Get(cookie.Value)
	if !ok {
		return nil, false
	}
	h.setCookie(w, state.Token)
	return state, true
}

func (h *SessionMiddlewareHandler) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireLogin rejects requests whose session is not logged in.
func (h *SessionMiddlewareHandler) RequireLogin() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state, ok := SessionFromContext(r.Context())
			if !ok || !state.LoggedIn() {
				log.Tracef("[not logged in] [session middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
