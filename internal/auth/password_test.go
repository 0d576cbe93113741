package auth_test

import (
	"testing"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/auth"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-enough")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret-enough" {
		t.Fatal("hash equals plaintext")
	}
	if !auth.CheckPassword(hash, "s3cret-enough") {
		t.Error("correct password rejected")
	}
	if auth.CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
