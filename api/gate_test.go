package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"taskboard-api/domain"
)

var (
	adminIdent      = domain.Identity{ID: "adm", Role: domain.RoleAdmin, DisplayName: "Admin"}
	taskableIdent   = domain.Identity{ID: "tsk", Role: domain.RoleUser, AddedTaskable: true, DisplayName: "Worker"}
	restrictedIdent = domain.Identity{ID: "nrm", Role: domain.RoleUser, AddedTaskable: false, DisplayName: "Visitor"}
)

func TestDecideUnauthenticated(t *testing.T) {
	if d := Decide(AreaEntry, false, nil); !d.Allow {
		t.Fatalf("entry must be public, got %+v", d)
	}
	for _, area := range []Area{AreaAdmin, AreaUser, AreaRestricted} {
		d := Decide(area, false, nil)
		if d.Allow || d.Redirect != PathEntry {
			t.Fatalf("area %s without session: got %+v", area, d)
		}
	}
}

func TestDecideHomeAreaExclusivity(t *testing.T) {
	cases := []struct {
		ident domain.Identity
		home  Area
	}{
		{adminIdent, AreaAdmin},
		{taskableIdent, AreaUser},
		{restrictedIdent, AreaRestricted},
	}
	for _, tc := range cases {
		for _, area := range []Area{AreaAdmin, AreaUser, AreaRestricted} {
			d := Decide(area, true, &tc.ident)
			if area == tc.home {
				if !d.Allow {
					t.Fatalf("%s identity must reach %s, got %+v", tc.home, area, d)
				}
				continue
			}
			if d.Allow || d.Redirect != PathUnauthorized {
				t.Fatalf("%s identity in area %s: got %+v", tc.home, area, d)
			}
		}
	}
}

func TestDecideEntryRedirectsSignedInToHome(t *testing.T) {
	cases := []struct {
		ident domain.Identity
		want  string
	}{
		{adminIdent, PathAdminHome},
		{taskableIdent, PathUserHome},
		{restrictedIdent, PathRestrictedHome},
	}
	for _, tc := range cases {
		d := Decide(AreaEntry, true, &tc.ident)
		if d.Allow || d.Redirect != tc.want {
			t.Fatalf("entry with %s: got %+v, want redirect to %s", tc.ident.Role, d, tc.want)
		}
	}
}

func TestDecideFailsClosed(t *testing.T) {
	// Identity lookup failed or returned no row.
	for _, area := range []Area{AreaEntry, AreaAdmin, AreaUser, AreaRestricted} {
		d := Decide(area, true, nil)
		if d.Allow || d.Redirect != PathUnauthorized {
			t.Fatalf("area %s with unresolved identity: got %+v", area, d)
		}
	}

	unknown := domain.Identity{ID: "x", Role: "superuser"}
	d := Decide(AreaAdmin, true, &unknown)
	if d.Allow || d.Redirect != PathUnauthorized {
		t.Fatalf("unknown role must be rejected, got %+v", d)
	}
	if d = Decide(AreaEntry, true, &unknown); d.Allow || d.Redirect != PathUnauthorized {
		t.Fatalf("unknown role has no home, got %+v", d)
	}
}

type stubAuth struct{}

func (stubAuth) SessionFromAuthHeader(h string) (Session, error) {
	token, err := bearerToken(h)
	if err != nil {
		return Session{}, err
	}
	// Test tokens look like "<userID>.x.y".
	sess := Session{UserID: token[:len(token)-4], Token: token, ExpiresAt: time.Now().Add(time.Hour)}
	return sess, nil
}

func bearerFor(userID string) string {
	return "Bearer " + userID + ".x.y"
}

type stubIdentities struct {
	idents map[string]domain.Identity
	err    error
}

func (s *stubIdentities) FetchIdentity(_ context.Context, userID string) (domain.Identity, error) {
	if s.err != nil {
		return domain.Identity{}, s.err
	}
	ident, ok := s.idents[userID]
	if !ok {
		return domain.Identity{}, errors.New("identity not found")
	}
	return ident, nil
}

type stubRevoker struct {
	revoked map[string]bool
	err     error
}

func (s *stubRevoker) Revoke(_ context.Context, token string, _ time.Duration) error {
	if s.revoked == nil {
		s.revoked = map[string]bool{}
	}
	s.revoked[token] = true
	return nil
}

func (s *stubRevoker) IsRevoked(_ context.Context, token string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[token], nil
}

func gateServer(idents *stubIdentities, revoker Revoker) *echo.Echo {
	e := echo.New()
	gate := NewGate(stubAuth{}, revoker, idents, nil)
	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	e.GET(PathUserHome, handler, gate.Middleware(AreaUser))
	e.GET(PathAdminHome, handler, gate.Middleware(AreaAdmin))
	e.GET("/api/projects", handler, gate.Middleware(AreaUser))
	return e
}

func doGet(e *echo.Echo, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddlewarePageRedirects(t *testing.T) {
	idents := &stubIdentities{idents: map[string]domain.Identity{"tsk": taskableIdent}}
	e := gateServer(idents, &stubRevoker{})

	rec := doGet(e, PathUserHome, "")
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != PathEntry {
		t.Fatalf("expected redirect to entry, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}

	rec = doGet(e, PathAdminHome, bearerFor("tsk"))
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != PathUnauthorized {
		t.Fatalf("expected redirect to unauthorized, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}

	rec = doGet(e, PathUserHome, bearerFor("tsk"))
	if rec.Code != http.StatusOK {
		t.Fatalf("taskable user must reach their home, got %d", rec.Code)
	}
}

func TestMiddlewareAPIPathsGetStatusCodes(t *testing.T) {
	idents := &stubIdentities{idents: map[string]domain.Identity{"tsk": taskableIdent, "nrm": restrictedIdent}}
	e := gateServer(idents, &stubRevoker{})

	if rec := doGet(e, "/api/projects", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}
	if rec := doGet(e, "/api/projects", bearerFor("nrm")); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-taskable user, got %d", rec.Code)
	}
	if rec := doGet(e, "/api/projects", bearerFor("tsk")); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for taskable user, got %d", rec.Code)
	}
}

func TestMiddlewareTaskableToggleTakesEffectNextRequest(t *testing.T) {
	// The gate refetches the identity per request, so flipping the flag
	// changes the decision without re-authentication.
	ident := taskableIdent
	idents := &stubIdentities{idents: map[string]domain.Identity{"tsk": ident}}
	e := gateServer(idents, &stubRevoker{})

	if rec := doGet(e, "/api/projects", bearerFor("tsk")); rec.Code != http.StatusOK {
		t.Fatalf("expected access while taskable, got %d", rec.Code)
	}

	ident.AddedTaskable = false
	idents.idents["tsk"] = ident
	if rec := doGet(e, "/api/projects", bearerFor("tsk")); rec.Code != http.StatusForbidden {
		t.Fatalf("expected revoked access on the next request, got %d", rec.Code)
	}

	ident.AddedTaskable = true
	idents.idents["tsk"] = ident
	if rec := doGet(e, "/api/projects", bearerFor("tsk")); rec.Code != http.StatusOK {
		t.Fatalf("expected access restored on the next request, got %d", rec.Code)
	}
}

func TestMiddlewareFailsClosedOnLookupError(t *testing.T) {
	idents := &stubIdentities{err: errors.New("store down")}
	e := gateServer(idents, &stubRevoker{})

	rec := doGet(e, PathUserHome, bearerFor("tsk"))
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != PathUnauthorized {
		t.Fatalf("lookup failure must fail closed, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestMiddlewareRejectsRevokedToken(t *testing.T) {
	idents := &stubIdentities{idents: map[string]domain.Identity{"tsk": taskableIdent}}
	revoker := &stubRevoker{}
	e := gateServer(idents, revoker)

	if rec := doGet(e, "/api/projects", bearerFor("tsk")); rec.Code != http.StatusOK {
		t.Fatalf("expected access before sign-out, got %d", rec.Code)
	}
	_ = revoker.Revoke(context.Background(), "tsk.x.y", time.Hour)
	if rec := doGet(e, "/api/projects", bearerFor("tsk")); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked token to be treated as no session, got %d", rec.Code)
	}
}

func TestMiddlewareFailsClosedOnRevokerError(t *testing.T) {
	idents := &stubIdentities{idents: map[string]domain.Identity{"tsk": taskableIdent}}
	e := gateServer(idents, &stubRevoker{err: errors.New("redis down")})

	if rec := doGet(e, "/api/projects", bearerFor("tsk")); rec.Code != http.StatusUnauthorized {
		t.Fatalf("revocation-check failure must fail closed, got %d", rec.Code)
	}
}
