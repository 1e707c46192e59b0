package security_test

import (
	"testing"

	"github.com/angelmondragon/shophub-backend/pkg/config"
	"github.com/angelmondragon/shophub-backend/pkg/security"
)

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}

	hash, err := security.HashPassword("very-secure-password", cfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty string")
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := security.VerifyPassword("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := security.HashPassword("", config.PasswordConfig{}); err == nil {
		t.Fatal("expected empty password to fail")
	}
}

func TestHashClampsWeakConfig(t *testing.T) {
	hash, err := security.HashPassword("Secret1", config.PasswordConfig{})
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	ok, err := security.VerifyPassword("Secret1", hash)
	if err != nil || !ok {
		t.Fatalf("expected clamped params to round trip, ok=%v err=%v", ok, err)
	}
}

func TestMeetsPolicy(t *testing.T) {
	cases := map[string]bool{
		"Secret1":   true,
		"aB3def":    true,
		"Ab1":       false,
		"secret12":  false,
		"SECRET12":  false,
		"SecretOne": false,
		"":          false,
	}
	for pw, want := range cases {
		if got := security.MeetsPolicy(pw); got != want {
			t.Errorf("MeetsPolicy(%q) = %v, want %v", pw, got, want)
		}
	}
}
