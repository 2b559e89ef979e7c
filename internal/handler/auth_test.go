package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/comanda-pos/terminal/internal/auth"
	"github.com/comanda-pos/terminal/internal/model"
	"github.com/comanda-pos/terminal/internal/store"
)

const testSecret = "test-secret"

type fakeAuthStore struct {
	getByUsername func(ctx context.Context, username string) (*model.Operator, error)
	getByID       func(ctx context.Context, id uuid.UUID) (*model.Operator, error)
	touchLogin    func(ctx context.Context, id uuid.UUID, at time.Time) error
}

func (f *fakeAuthStore) GetOperatorByUsername(ctx context.Context, username string) (*model.Operator, error) {
	return f.getByUsername(ctx, username)
}

func (f *fakeAuthStore) GetOperatorByID(ctx context.Context, id uuid.UUID) (*model.Operator, error) {
	return f.getByID(ctx, id)
}

func (f *fakeAuthStore) TouchOperatorLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if f.touchLogin != nil {
		return f.touchLogin(ctx, id, at)
	}
	return nil
}

func testOperator(t *testing.T, pin string) *model.Operator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	return &model.Operator{
		ID:       uuid.New(),
		Name:     "Ana Silva",
		Username: "ana",
		PinHash:  string(hash),
		Role:     "waiter",
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestLoginSuccess(t *testing.T) {
	op := testOperator(t, "1234")
	var touched bool
	st := &fakeAuthStore{
		getByUsername: func(_ context.Context, username string) (*model.Operator, error) {
			if username != "ana" {
				t.Errorf("username: got %q", username)
			}
			return op, nil
		},
		touchLogin: func(_ context.Context, id uuid.UUID, _ time.Time) error {
			touched = true
			if id != op.ID {
				t.Errorf("touched wrong operator: %s", id)
			}
			return nil
		},
	}
	h := NewAuthHandler(st, testSecret)

	rec := postJSON(t, h.Login, map[string]string{"username": "ana", "pin": "1234"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body)
	}

	var resp tokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if resp.Operator.Username != "ana" || resp.Operator.Role != "waiter" {
		t.Errorf("operator: %+v", resp.Operator)
	}
	if !touched {
		t.Error("last login was not stamped")
	}

	claims, err := auth.ValidateToken(testSecret, resp.AccessToken)
	if err != nil {
		t.Fatalf("validate issued token: %v", err)
	}
	if claims.OperatorID != op.ID || claims.Role != "waiter" {
		t.Errorf("claims: %+v", claims)
	}
}

func TestLoginWrongPin(t *testing.T) {
	op := testOperator(t, "1234")
	st := &fakeAuthStore{
		getByUsername: func(context.Context, string) (*model.Operator, error) { return op, nil },
	}
	h := NewAuthHandler(st, testSecret)

	rec := postJSON(t, h.Login, map[string]string{"username": "ana", "pin": "9999"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rec.Code)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	st := &fakeAuthStore{
		getByUsername: func(context.Context, string) (*model.Operator, error) {
			return nil, store.ErrNotFound
		},
	}
	h := NewAuthHandler(st, testSecret)

	rec := postJSON(t, h.Login, map[string]string{"username": "ghost", "pin": "1234"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rec.Code)
	}
}

func TestLoginMissingFields(t *testing.T) {
	h := NewAuthHandler(&fakeAuthStore{}, testSecret)

	rec := postJSON(t, h.Login, map[string]string{"username": "ana"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
}

func TestLoginFailedTouchDoesNotBlock(t *testing.T) {
	op := testOperator(t, "1234")
	st := &fakeAuthStore{
		getByUsername: func(context.Context, string) (*model.Operator, error) { return op, nil },
		touchLogin: func(context.Context, uuid.UUID, time.Time) error {
			return context.DeadlineExceeded
		},
	}
	h := NewAuthHandler(st, testSecret)

	rec := postJSON(t, h.Login, map[string]string{"username": "ana", "pin": "1234"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
}

func TestRefreshSuccess(t *testing.T) {
	op := testOperator(t, "1234")
	refresh, err := auth.GenerateRefreshToken(testSecret, op.ID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}
	st := &fakeAuthStore{
		getByID: func(_ context.Context, id uuid.UUID) (*model.Operator, error) {
			if id != op.ID {
				t.Errorf("looked up wrong operator: %s", id)
			}
			return op, nil
		},
	}
	h := NewAuthHandler(st, testSecret)

	rec := postJSON(t, h.Refresh, map[string]string{"refresh_token": refresh})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body)
	}

	var resp tokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected a fresh token pair")
	}
}

func TestRefreshInvalidToken(t *testing.T) {
	h := NewAuthHandler(&fakeAuthStore{}, testSecret)

	rec := postJSON(t, h.Refresh, map[string]string{"refresh_token": "not-a-token"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rec.Code)
	}
}

func TestRefreshDeletedOperator(t *testing.T) {
	refresh, err := auth.GenerateRefreshToken(testSecret, uuid.New())
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}
	st := &fakeAuthStore{
		getByID: func(context.Context, uuid.UUID) (*model.Operator, error) {
			return nil, store.ErrNotFound
		},
	}
	h := NewAuthHandler(st, testSecret)

	rec := postJSON(t, h.Refresh, map[string]string{"refresh_token": refresh})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rec.Code)
	}
}
