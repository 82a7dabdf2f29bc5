package auth

import (
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewJWTIssuer("secret")
	verifier := NewJWTVerifier("secret")

	token, err := issuer.Issue("user-1", "Alice", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	actorID, displayName, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if actorID != "user-1" {
		t.Fatalf("expected actor user-1, got %s", actorID)
	}
	if displayName != "Alice" {
		t.Fatalf("expected display name Alice, got %s", displayName)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewJWTIssuer("secret")
	verifier := NewJWTVerifier("other-secret")

	token, err := issuer.Issue("user-1", "Alice", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected verification with wrong secret to fail")
	}
}

func TestVerify_Expired(t *testing.T) {
	issuer := NewJWTIssuer("secret")
	verifier := NewJWTVerifier("secret")

	token, err := issuer.Issue("user-1", "Alice", -time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestVerify_Garbage(t *testing.T) {
	verifier := NewJWTVerifier("secret")
	if _, _, err := verifier.Verify("not-a-token"); err == nil {
		t.Fatal("expected garbage token to fail verification")
	}
}
