package security

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter2" {
		t.Fatalf("password stored in the clear")
	}
	if !CheckPassword(hash, "hunter2") {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(hash, "hunter3") {
		t.Fatalf("wrong password accepted")
	}
}

func TestNewToken(t *testing.T) {
	a, err := NewToken(32)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	b, err := NewToken(32)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if a == b {
		t.Fatalf("tokens must be unique")
	}
	if len(a) < 40 {
		t.Fatalf("token too short: %q", a)
	}
}
