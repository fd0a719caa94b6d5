package api

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "unit-test-secret"

func localAuth(t *testing.T) *Auth {
	t.Helper()
	t.Setenv(envLocalAuthMode, "hs256")
	t.Setenv(envLocalAuthSecret, testSecret)
	return NewAuth(nil, "", "")
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestSessionFromAuthHeader(t *testing.T) {
	a := localAuth(t)
	exp := time.Now().Add(time.Hour)
	token := signToken(t, jwt.MapClaims{"sub": "user-1", "exp": exp.Unix()})

	sess, err := a.SessionFromAuthHeader("Bearer " + token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.UserID != "user-1" {
		t.Fatalf("unexpected user id: %q", sess.UserID)
	}
	if sess.Token != token {
		t.Fatalf("session must carry the raw token for revocation")
	}
	if sess.ExpiresAt.Unix() != exp.Unix() {
		t.Fatalf("unexpected expiry: %v", sess.ExpiresAt)
	}
}

func TestSessionFromAuthHeaderRejectsBadHeaders(t *testing.T) {
	a := localAuth(t)
	token := signToken(t, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()})

	cases := []string{
		"",
		"Bearer ",
		"Basic " + token,
		"Bearer not-a-jwt",
		token,
	}
	for _, h := range cases {
		if _, err := a.SessionFromAuthHeader(h); err == nil {
			t.Fatalf("expected error for header %q", h)
		}
	}
}

func TestSessionFromAuthHeaderRejectsExpiredToken(t *testing.T) {
	a := localAuth(t)
	token := signToken(t, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-2 * time.Hour).Unix()})

	if _, err := a.SessionFromAuthHeader("Bearer " + token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestSessionFromAuthHeaderRequiresSub(t *testing.T) {
	a := localAuth(t)
	token := signToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})

	if _, err := a.SessionFromAuthHeader("Bearer " + token); err == nil {
		t.Fatalf("expected token without sub to be rejected")
	}
}
