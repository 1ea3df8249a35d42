package identity

import (
	"errors"
	"testing"
)

func TestRegistrationValidate(t *testing.T) {
	ok := Registration{Username: " alice ", Email: " Alice@Example.com ", Password: "correct horse"}.Normalize()
	if ok.Username != "alice" || ok.Email != "alice@example.com" {
		t.Fatalf("unexpected normalize result %+v", ok)
	}
	if err := ok.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	bad := []Registration{
		{Username: "", Email: "a@b.co", Password: "longenough"},
		{Username: "a b", Email: "a@b.co", Password: "longenough"},
		{Username: "alice", Email: "nope", Password: "longenough"},
		{Username: "alice", Email: "a@b.co", Password: "short"},
	}
	for _, reg := range bad {
		if err := reg.Validate(); !errors.Is(err, ErrInvalidUser) {
			t.Fatalf("%+v: expected ErrInvalidUser, got %v", reg, err)
		}
	}
}
