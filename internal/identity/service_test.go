package identity

import (
	"context"
	"testing"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	user, err := svc.Register(ctx, Credentials{Email: "Seller@Example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "seller@example.com" {
		t.Fatalf("expected lowercased email, got %s", user.Email)
	}
	if user.Role != RoleCustomer {
		t.Fatalf("expected customer role, got %s", user.Role)
	}

	authed, err := svc.Authenticate(ctx, Credentials{Email: "seller@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, authed.ID)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, Credentials{Email: "no-at-sign", Password: "long-enough"}); err == nil {
		t.Fatal("expected invalid email error")
	}
	if _, err := svc.Register(ctx, Credentials{Email: "a@b.com", Password: "short"}); err == nil {
		t.Fatal("expected short password error")
	}
}

func TestAuthenticateRejectsWrongPassword(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, Credentials{Email: "a@b.com", Password: "correct-horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Authenticate(ctx, Credentials{Email: "a@b.com", Password: "wrong-horse"}); err == nil {
		t.Fatal("expected authentication failure")
	}
	if _, err := svc.Authenticate(ctx, Credentials{Email: "nobody@b.com", Password: "correct-horse"}); err == nil {
		t.Fatal("expected unknown user failure")
	}
}
