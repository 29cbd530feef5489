package auth

import "testing"

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("demo123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "demo123" {
		t.Fatalf("hash must not equal plaintext")
	}
	if err := VerifyPassword(hash, "demo123"); err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if err := VerifyPassword(hash, "demo124"); err == nil {
		t.Fatalf("expected mismatch for wrong password")
	}
}

func TestPasswordHashSaltsIndependently(t *testing.T) {
	h1, err := HashPassword("demo123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("demo123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two hashes of the same plaintext must differ")
	}
	if err := VerifyPassword(h1, "demo123"); err != nil {
		t.Fatalf("verify h1: %v", err)
	}
	if err := VerifyPassword(h2, "demo123"); err != nil {
		t.Fatalf("verify h2: %v", err)
	}
}

func TestPasswordEdgeCases(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatalf("expected error for empty password")
	}
	if err := VerifyPassword("", "demo123"); err == nil {
		t.Fatalf("expected error for empty hash")
	}
}
