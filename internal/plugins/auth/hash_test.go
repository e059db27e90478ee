package auth

import (
	"strings"
	"testing"
)

func TestHashPassword_KnownDigest(t *testing.T) {
	// sha256("password")
	want := "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8"
	if got := HashPassword("password"); got != want {
		t.Errorf("HashPassword(password) = %s, want %s", got, want)
	}
}

func TestHashPassword_Deterministic(t *testing.T) {
	if HashPassword("hunter2") != HashPassword("hunter2") {
		t.Error("expected identical digests for identical input")
	}
	if HashPassword("hunter2") == HashPassword("hunter3") {
		t.Error("expected different digests for different input")
	}
}

func TestHashPassword_Format(t *testing.T) {
	for _, p := range []string{"", "a", "pässwörd", strings.Repeat("x", 4096)} {
		got := HashPassword(p)
		if len(got) != DigestLength {
			t.Errorf("digest of %q has length %d, want %d", p, len(got), DigestLength)
		}
		if strings.ToLower(got) != got {
			t.Errorf("digest of %q is not lowercase hex: %s", p, got)
		}
		if got == p {
			t.Errorf("digest must never equal the plaintext")
		}
	}
}

func TestVerifyPassword(t *testing.T) {
	stored := HashPassword("correct horse")

	if !VerifyPassword("correct horse", stored) {
		t.Error("expected matching password to verify")
	}
	if VerifyPassword("wrong", stored) {
		t.Error("expected wrong password to fail")
	}
	if VerifyPassword("correct horse", "") {
		t.Error("expected empty stored digest to fail")
	}
	if VerifyPassword("correct horse", strings.ToUpper(stored)) {
		t.Error("digests are compared exactly")
	}
}
