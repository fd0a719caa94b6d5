package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
)

// Area names a guarded section of the site. Every identity has exactly
// one home area; requests anywhere else are rejected.
type Area string

const (
	AreaEntry      Area = "entry"
	AreaAdmin      Area = "admin"
	AreaUser       Area = "user"
	AreaRestricted Area = "restricted"
)

// Route paths the gate redirects to.
const (
	PathEntry          = "/"
	PathAdminHome      = "/admin"
	PathUserHome       = "/user"
	PathRestrictedHome = "/normaluser"
	PathUnauthorized   = "/unauthorized"
)

// Decision is the outcome of evaluating the gate for one request:
// either the request proceeds, or it is redirected to Redirect.
type Decision struct {
	Allow    bool
	Redirect string
}

// Decide implements the routing decision table. authenticated is false
// when there is no valid session; ident is nil when the identity lookup
// failed or returned no row, which fails closed to the unauthorized page.
func Decide(area Area, authenticated bool, ident *domain.Identity) Decision {
	if !authenticated {
		if area == AreaEntry {
			return Decision{Allow: true}
		}
		return Decision{Redirect: PathEntry}
	}
	if ident == nil {
		return Decision{Redirect: PathUnauthorized}
	}
	home := homeArea(*ident)
	if area == AreaEntry {
		// Signed-in users never see the login page again.
		return Decision{Redirect: homePath(home)}
	}
	if area == home {
		return Decision{Allow: true}
	}
	return Decision{Redirect: PathUnauthorized}
}

func homeArea(ident domain.Identity) Area {
	switch {
	case ident.Role == domain.RoleAdmin:
		return AreaAdmin
	case ident.Role == domain.RoleUser && ident.AddedTaskable:
		return AreaUser
	case ident.Role == domain.RoleUser:
		return AreaRestricted
	}
	// Unknown role: no home, everything redirects to unauthorized.
	return ""
}

func homePath(area Area) string {
	switch area {
	case AreaAdmin:
		return PathAdminHome
	case AreaUser:
		return PathUserHome
	case AreaRestricted:
		return PathRestrictedHome
	}
	return PathUnauthorized
}

// IdentityGetter is the one store read the gate performs.
type IdentityGetter interface {
	FetchIdentity(ctx context.Context, userID string) (domain.Identity, error)
}

// Gate is the authorization checkpoint in front of every protected
// route. It re-evaluates the decision table on each request and fetches
// the identity row fresh each time, so an admin toggling the taskable
// flag takes effect on the caller's very next request.
type Gate struct {
	auth    Authenticator
	revoker Revoker
	store   IdentityGetter
	log     *log.Logger
}

// NewGate wires the gate's collaborators.
func NewGate(auth Authenticator, revoker Revoker, store IdentityGetter, logger *log.Logger) *Gate {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Gate{auth: auth, revoker: revoker, store: store, log: logger}
}

const (
	sessionContextKey  = "gate.session"
	identityContextKey = "gate.identity"
)

// Middleware guards every route in the given area. Page routes get the
// decision table's redirect; API routes get a status code instead, since
// redirecting a fetch call helps nobody. Both come from the same table.
func (g *Gate) Middleware(area Area) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			sess, ident, authed := g.resolve(ctx, c.Request().Header.Get(echo.HeaderAuthorization))
			d := Decide(area, authed, ident)
			if d.Allow {
				if sess != nil {
					c.Set(sessionContextKey, *sess)
				}
				if ident != nil {
					c.Set(identityContextKey, *ident)
				}
				return next(c)
			}
			if isAPIPath(c.Request().URL.Path) {
				if !authed {
					return c.String(http.StatusUnauthorized, "sign in required")
				}
				return c.String(http.StatusForbidden, "forbidden")
			}
			return c.Redirect(http.StatusSeeOther, d.Redirect)
		}
	}
}

// resolve turns the Authorization header into (session, identity). Any
// failure past token validation keeps the session but drops the identity
// so Decide fails closed; a revoked or invalid token means no session.
func (g *Gate) resolve(ctx context.Context, header string) (*Session, *domain.Identity, bool) {
	if header == "" {
		return nil, nil, false
	}
	sess, err := g.auth.SessionFromAuthHeader(header)
	if err != nil {
		return nil, nil, false
	}
	if g.revoker != nil {
		revoked, err := g.revoker.IsRevoked(ctx, sess.Token)
		if err != nil {
			g.log.WithError(err).Warn("revocation check failed")
			return nil, nil, false
		}
		if revoked {
			return nil, nil, false
		}
	}
	ident, err := g.store.FetchIdentity(ctx, sess.UserID)
	if err != nil {
		g.log.WithError(err).WithField("user_id", sess.UserID).Warn("identity lookup failed")
		return &sess, nil, true
	}
	return &sess, &ident, true
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

func sessionFrom(c echo.Context) (Session, bool) {
	sess, ok := c.Get(sessionContextKey).(Session)
	return sess, ok
}

func identityFrom(c echo.Context) (domain.Identity, bool) {
	ident, ok := c.Get(identityContextKey).(domain.Identity)
	return ident, ok
}
