package admin_test

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	appadmin "staybook/internal/app/admin"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
)

func newService(t *testing.T, password string) *appadmin.Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return &appadmin.Service{
		PasswordHash: string(hash),
		Passwords:    security.BcryptHasher{},
		Tokens:       security.RandomTokenGenerator{},
		Sessions:     memory.NewSessions(),
		SessionTTL:   time.Hour,
	}
}

func TestLoginAndValidate(t *testing.T) {
	svc := newService(t, "hunter2")

	token, err := svc.Login(context.Background(), "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}
	ok, err := svc.ValidateToken(context.Background(), token)
	if err != nil || !ok {
		t.Fatalf("ValidateToken = %v, %v; want true", ok, err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newService(t, "hunter2")
	if _, err := svc.Login(context.Background(), "guess"); err != appadmin.ErrInvalidCredentials {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(context.Background(), ""); err != appadmin.ErrInvalidCredentials {
		t.Fatalf("empty password: got %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginWithoutConfiguredHash(t *testing.T) {
	svc := newService(t, "hunter2")
	svc.PasswordHash = ""
	if _, err := svc.Login(context.Background(), "hunter2"); err != appadmin.ErrInvalidCredentials {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	svc := newService(t, "hunter2")
	ok, err := svc.ValidateToken(context.Background(), "bogus")
	if err != nil || ok {
		t.Fatalf("ValidateToken = %v, %v; want false", ok, err)
	}
	ok, err = svc.ValidateToken(context.Background(), "")
	if err != nil || ok {
		t.Fatalf("empty token: ValidateToken = %v, %v; want false", ok, err)
	}
}
