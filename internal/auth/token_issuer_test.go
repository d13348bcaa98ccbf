package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestIssuer(clock func() time.Time) *TokenIssuer {
	return NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("test-secret"),
		Passcode:      "open-sesame",
		TokenTTL:      10 * time.Minute,
		Clock:         clock,
	})
}

func TestIssueAdminTokenRoundTrip(t *testing.T) {
	now := time.Unix(1760000000, 0).UTC()
	issuer := newTestIssuer(func() time.Time { return now })

	token, expiresIn, err := issuer.IssueAdminToken(context.Background(), "open-sesame")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expiresIn != int64((10 * time.Minute).Seconds()) {
		t.Fatalf("unexpected expiry: %d", expiresIn)
	}

	subject, err := issuer.ValidateToken(token)
	if err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if subject != AdminSubject {
		t.Fatalf("unexpected subject: %s", subject)
	}
}

func TestIssueAdminTokenRejectsWrongPasscode(t *testing.T) {
	issuer := newTestIssuer(nil)
	if _, _, err := issuer.IssueAdminToken(context.Background(), "guess"); !errors.Is(err, ErrInvalidPasscode) {
		t.Fatalf("expected ErrInvalidPasscode, got %v", err)
	}
	if _, _, err := issuer.IssueAdminToken(context.Background(), ""); !errors.Is(err, ErrInvalidPasscode) {
		t.Fatalf("expected ErrInvalidPasscode for empty input, got %v", err)
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	now := time.Unix(1760000000, 0).UTC()
	issuer := newTestIssuer(func() time.Time { return now })

	token, _, err := issuer.IssueAdminToken(context.Background(), "open-sesame")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = now.Add(11 * time.Minute)
	if _, err := issuer.ValidateToken(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	issuer := newTestIssuer(nil)
	other := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("different-secret"),
		Passcode:      "open-sesame",
	})

	token, _, err := other.IssueAdminToken(context.Background(), "open-sesame")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := issuer.ValidateToken(token); err == nil {
		t.Fatalf("expected signature mismatch to be rejected")
	}
}

func TestPasscodeConfigured(t *testing.T) {
	if NewTokenIssuer(TokenIssuerConfig{SigningSecret: []byte("s")}).PasscodeConfigured() {
		t.Fatalf("expected open editor without a passcode")
	}
	if !newTestIssuer(nil).PasscodeConfigured() {
		t.Fatalf("expected configured passcode to be reported")
	}
}
