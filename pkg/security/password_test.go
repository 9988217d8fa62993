package security

import (
	"strings"
	"testing"

	"github.com/cropcareapp/cropcare-backend/pkg/config"
)

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := config.PasswordConfig{BcryptCost: 4} // minimum cost keeps the test fast

	digest, err := HashPassword("s3cret-pw", cfg)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if strings.Contains(digest, "s3cret-pw") {
		t.Fatal("digest must not embed the plaintext")
	}

	ok, err := VerifyPassword("s3cret-pw", digest)
	if err != nil {
		t.Fatalf("verify password: %v", err)
	}
	if !ok {
		t.Fatal("expected matching password to verify")
	}

	ok, err = VerifyPassword("wrong-pw", digest)
	if err != nil {
		t.Fatalf("verify wrong password: %v", err)
	}
	if ok {
		t.Fatal("expected mismatch to fail verification")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	cfg := config.PasswordConfig{BcryptCost: 4}

	first, err := HashPassword("same-password", cfg)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	second, err := HashPassword("same-password", cfg)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword("", config.PasswordConfig{}); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyPasswordMalformedDigest(t *testing.T) {
	if _, err := VerifyPassword("pw", "not-a-bcrypt-digest"); err == nil {
		t.Fatal("expected error for malformed digest")
	}
}
