package session

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"testing"
	"time"
	"walletledger/internal/app/apperr"
)

func TestJWT_CreateRead(t *testing.T) {
	ctx := context.Background()
	svc := NewJWT("secret", WithIssuer("walletledger"))

	in := Actor{UserID: uuid.New(), IsAdmin: true}
	token, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	out, err := svc.Read(ctx, token)
	if err != nil {
		t.Fatal(err)
	}
	if *out != in {
		t.Errorf("Read() = %+v, want %+v", *out, in)
	}
}

func TestJWT_ReadRejects(t *testing.T) {
	ctx := context.Background()
	a := Actor{UserID: uuid.New()}

	other, _ := NewJWT("other").Create(ctx, a)
	expired, _ := NewJWT("secret", WithTokenLifetime(-time.Minute)).Create(ctx, a)
	foreignIssuer, _ := NewJWT("secret", WithIssuer("someone")).Create(ctx, a)

	svc := NewJWT("secret", WithIssuer("walletledger"))
	for name, token := range map[string]string{
		"garbage":        "not-a-token",
		"wrong secret":   other,
		"expired":        expired,
		"foreign issuer": foreignIssuer,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Read(ctx, token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Read() error = %v", err)
			}
		})
	}
}

func TestContext_CurrentActor(t *testing.T) {
	if _, err := (Context{}).CurrentActor(context.Background()); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("err = %v", err)
	}

	a := Actor{UserID: uuid.New()}
	got, err := (Context{}).CurrentActor(WithActor(context.Background(), a))
	if err != nil || got != a {
		t.Errorf("CurrentActor() = %+v, %v", got, err)
	}
}
