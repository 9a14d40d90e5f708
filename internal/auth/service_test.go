package auth

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/parthobardhan/inventory-app-sub002/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret",
		AdminUsername: "admin",
		AdminPassword: "hunter2",
	}
}

func TestLogin_IssuesValidToken(t *testing.T) {
	svc := NewService(testConfig())

	tokenStr, err := svc.Login("admin", "hunter2")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("issued token does not validate: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["sub"] != "admin" {
		t.Errorf("sub = %v, want admin", claims["sub"])
	}
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	svc := NewService(testConfig())

	cases := []struct{ user, pass string }{
		{"admin", "wrong"},
		{"wrong", "hunter2"},
		{"", ""},
	}
	for _, tc := range cases {
		if _, err := svc.Login(tc.user, tc.pass); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%q, %q) err = %v, want ErrInvalidCredentials", tc.user, tc.pass, err)
		}
	}
}
