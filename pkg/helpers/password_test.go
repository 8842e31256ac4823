package helpers

import "testing"

func TestHashPassword_RandomSalt(t *testing.T) {
	first, err := HashPassword("secret")
	if err != nil {
		t.Fatal(err)
	}
	second, err := HashPassword("secret")
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("hashing the same input twice must yield different output")
	}
	if first == "secret" {
		t.Error("hash must not equal the plaintext")
	}
}

func TestCompareHashAndPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatal(err)
	}
	if !CompareHashAndPassword(hash, "secret") {
		t.Error("original password should verify")
	}
	if CompareHashAndPassword(hash, "wrong") {
		t.Error("wrong password should not verify")
	}
	if CompareHashAndPassword("not-a-hash", "secret") {
		t.Error("garbage hash should not verify")
	}
}
