package token

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("unit-test-secret-0123456789")

func newHS256Manager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()

	m, err := NewManager(Config{
		TTL:           ttl,
		SigningMethod: MethodHS256,
		PrivateKey:    testSecret,
		Issuer:        "gochat-test",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestHS256IssueAndParse(t *testing.T) {
	m := newHS256Manager(t, time.Minute)

	raw, err := m.Issue("alice", "session-7")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := m.Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.UID != "alice" || claims.SID != "session-7" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Issuer != "gochat-test" {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("expected an expiry claim")
	}
}

func TestEd25519IssueAndParse(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	m, err := NewManager(Config{
		TTL:           time.Minute,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	raw, err := m.Issue("alice", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := m.Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.UID != "alice" || claims.SID != "" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := newHS256Manager(t, time.Millisecond)

	raw, err := m.Issue("alice", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := m.Parse(raw); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseLeewayToleratesClockSkew(t *testing.T) {
	m, err := NewManager(Config{
		TTL:           time.Millisecond,
		SigningMethod: MethodHS256,
		PrivateKey:    testSecret,
		Leeway:        time.Minute,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	raw, err := m.Issue("alice", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := m.Parse(raw); err != nil {
		t.Fatalf("leeway should tolerate the lapse: %v", err)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	m := newHS256Manager(t, time.Minute)
	raw, err := m.Issue("alice", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	other, err := NewManager(Config{
		TTL:           time.Minute,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("completely-different-secret"),
		Issuer:        "gochat-test",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if _, err := other.Parse(raw); err == nil {
		t.Fatal("expected foreign signature to be rejected")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	issuer := newHS256Manager(t, time.Minute)
	raw, err := issuer.Issue("alice", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	verifier, err := NewManager(Config{
		TTL:           time.Minute,
		SigningMethod: MethodHS256,
		PrivateKey:    testSecret,
		Issuer:        "someone-else",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if _, err := verifier.Parse(raw); err == nil {
		t.Fatal("expected issuer mismatch to be rejected")
	}
}

func TestParseRejectsMissingUID(t *testing.T) {
	m := newHS256Manager(t, time.Minute)

	claims := ConnectionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			Issuer:    "gochat-test",
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := m.Parse(raw); err == nil {
		t.Fatal("expected token without uid to be rejected")
	}
}

func TestParseRejectsAlgorithmSubstitution(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	edManager, err := NewManager(Config{
		TTL:           time.Minute,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	hsManager := newHS256Manager(t, time.Minute)
	raw, err := hsManager.Issue("alice", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// An HS256-signed token presented to an Ed25519 verifier must fail by
	// method, not fall through to key confusion.
	if _, err := edManager.Parse(raw); err == nil {
		t.Fatal("expected algorithm mismatch to be rejected")
	}
}

func TestIssueRequiresUserID(t *testing.T) {
	m := newHS256Manager(t, time.Minute)
	if _, err := m.Issue("", "session-7"); err == nil {
		t.Fatal("expected empty user id to be rejected")
	}
}

func TestNewManagerValidation(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero ttl", Config{SigningMethod: MethodHS256, PrivateKey: testSecret}},
		{"excessive leeway", Config{TTL: time.Minute, SigningMethod: MethodHS256, PrivateKey: testSecret, Leeway: 5 * time.Minute}},
		{"hs256 without secret", Config{TTL: time.Minute, SigningMethod: MethodHS256}},
		{"ed25519 without public key", Config{TTL: time.Minute, SigningMethod: MethodEd25519}},
		{"ed25519 bad public key", Config{TTL: time.Minute, SigningMethod: MethodEd25519, PublicKey: []byte("short")}},
		{"unknown method", Config{TTL: time.Minute, SigningMethod: SigningMethod("rs512")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewManager(tc.cfg); err == nil {
				t.Fatal("expected validation to fail")
			}
		})
	}

	if _, err := NewManager(Config{TTL: time.Minute, SigningMethod: MethodEd25519, PublicKey: pub}); err != nil {
		t.Fatalf("verify-only ed25519 config must be valid: %v", err)
	}
}
