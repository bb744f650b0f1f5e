package security

import (
	"testing"
	"time"

	"innkeep/internal/app/services/auth"
)

func TestJWTManager_IssueVerifyRoundTrip(t *testing.T) {
	mgr := JWTManager{Secret: []byte("test-secret"), Issuer: "innkeep"}
	token, err := mgr.Issue(auth.Claims{UserID: "u-1", Name: "Somchai", Roles: []string{"guest"}}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := mgr.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "u-1" || claims.Name != "Somchai" {
		t.Fatalf("claims mangled: %+v", claims)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "guest" {
		t.Fatalf("roles mangled: %+v", claims.Roles)
	}
}

func TestJWTManager_ExpiredTokenRejected(t *testing.T) {
	issued := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	mgr := JWTManager{Secret: []byte("test-secret"), Now: func() time.Time { return issued }}
	token, err := mgr.Issue(auth.Claims{UserID: "u-1"}, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	later := JWTManager{Secret: []byte("test-secret"), Now: func() time.Time { return issued.Add(2 * time.Minute) }}
	if _, err := later.Verify(token); err == nil {
		t.Fatalf("expired token must be rejected")
	}
}

func TestJWTManager_WrongSecretRejected(t *testing.T) {
	mgr := JWTManager{Secret: []byte("test-secret")}
	token, err := mgr.Issue(auth.Claims{UserID: "u-1"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	other := JWTManager{Secret: []byte("not-the-secret")}
	if _, err := other.Verify(token); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
}

func TestJWTManager_RequiresSecret(t *testing.T) {
	var mgr JWTManager
	if _, err := mgr.Issue(auth.Claims{UserID: "u-1"}, time.Hour); err != ErrSecretRequired {
		t.Fatalf("expected ErrSecretRequired, got %v", err)
	}
}
