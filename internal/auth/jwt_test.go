package auth_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/comanda-pos/terminal/internal/auth"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret"
	operatorID := uuid.New()
	role := "cashier"

	token, err := auth.GenerateToken(secret, operatorID, role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := auth.ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}

	if claims.OperatorID != operatorID {
		t.Errorf("operator ID: got %v, want %v", claims.OperatorID, operatorID)
	}
	if claims.Role != role {
		t.Errorf("role: got %v, want %v", claims.Role, role)
	}
}

func TestValidateTokenWithWrongSecret(t *testing.T) {
	token, err := auth.GenerateToken("secret-a", uuid.New(), "cashier")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	_, err = auth.ValidateToken("secret-b", token)
	if err == nil {
		t.Fatal("expected error validating with wrong secret")
	}
}

func TestValidateTokenWithInvalidString(t *testing.T) {
	_, err := auth.ValidateToken("secret", "not-a-jwt")
	if err == nil {
		t.Fatal("expected error validating invalid token string")
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	operatorID := uuid.New()

	token, err := auth.GenerateRefreshToken(secret, operatorID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	got, err := auth.ParseRefreshSubject(secret, token)
	if err != nil {
		t.Fatalf("parse refresh subject: %v", err)
	}
	if got != operatorID {
		t.Errorf("subject: got %v, want %v", got, operatorID)
	}
}

func TestParseRefreshSubjectWithWrongSecret(t *testing.T) {
	token, err := auth.GenerateRefreshToken("secret-a", uuid.New())
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	if _, err := auth.ParseRefreshSubject("secret-b", token); err == nil {
		t.Fatal("expected error parsing with wrong secret")
	}
}
