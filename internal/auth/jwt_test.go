package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"fleet-service/internal/model"
)

func signToken(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func TestParseValidToken(t *testing.T) {
	driverID := uuid.New()
	claims := &Claims{
		UserID:   uuid.New(),
		OrgID:    uuid.New(),
		Name:     "Test Dispatcher",
		Role:     model.RoleDispatcher,
		DriverID: &driverID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	parser := NewParser("secret")
	parsed, err := parser.Parse(signToken(t, "secret", claims))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.UserID != claims.UserID {
		t.Fatalf("user id mismatch")
	}
	if parsed.Role != model.RoleDispatcher {
		t.Fatalf("expected dispatcher role, got %s", parsed.Role)
	}
	if parsed.DriverID == nil || *parsed.DriverID != driverID {
		t.Fatalf("driver id mismatch")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	claims := &Claims{
		UserID: uuid.New(),
		Role:   model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	parser := NewParser("right-secret")
	if _, err := parser.Parse(signToken(t, "wrong-secret", claims)); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	claims := &Claims{
		UserID: uuid.New(),
		Role:   model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}

	parser := NewParser("secret")
	if _, err := parser.Parse(signToken(t, "secret", claims)); err == nil {
		t.Fatalf("expected error for expired token")
	}
}
