package auth_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/saulo-duarte/luma-lambda/internal/auth"
)

const testSecret = "a-long-and-secure-secret-key-for-tests"
const testUserID = "b7a9c87e-5f52-4f1c-9f53-1d3e8a3c0f11"

func TestInit(t *testing.T) {
	t.Run("MissingSecret", func(t *testing.T) {
		os.Unsetenv("JWT_SECRET")

		defer func() {
			if r := recover(); r == nil {
				t.Errorf("Init should panic when JWT_SECRET is empty, but did not")
			}
		}()

		auth.Init()
	})

	t.Run("ValidSecret", func(t *testing.T) {
		os.Setenv("JWT_SECRET", testSecret)
		auth.Init()
	})
}

func TestGenerateAndValidateJWT(t *testing.T) {
	os.Setenv("JWT_SECRET", testSecret)
	auth.Init()

	t.Run("ValidToken", func(t *testing.T) {
		tokenStr, err := auth.GenerateJWT(testUserID, auth.RoleAdmin, time.Minute*5)
		if err != nil {
			t.Fatalf("GenerateJWT failed: %v", err)
		}

		claims, err := auth.ValidateJWT(tokenStr)
		if err != nil {
			t.Fatalf("ValidateJWT failed unexpectedly: %v", err)
		}

		if claims.UserID != testUserID {
			t.Errorf("wrong UserID. want %s, got %s", testUserID, claims.UserID)
		}
		if claims.Role != auth.RoleAdmin {
			t.Errorf("wrong Role. want %s, got %s", auth.RoleAdmin, claims.Role)
		}
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		tokenStr, err := auth.GenerateJWT(testUserID, auth.RoleUser, -time.Minute)
		if err != nil {
			t.Fatalf("GenerateJWT failed: %v", err)
		}

		_, err = auth.ValidateJWT(tokenStr)
		if err == nil {
			t.Fatal("ValidateJWT should fail on an expired token, but passed")
		}
		if !errors.Is(err, jwt.ErrTokenExpired) {
			t.Errorf("wrong error for expired token. want %v in chain, got %v", jwt.ErrTokenExpired, err)
		}
	})

	t.Run("InvalidSignature", func(t *testing.T) {
		otherKey := []byte("a-different-secret-signing-key-00")
		claims := &auth.Claims{
			UserID: testUserID,
			Role:   auth.RoleUser,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
		}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(otherKey)
		if err != nil {
			t.Fatalf("signing forged token failed: %v", err)
		}

		_, err = auth.ValidateJWT(forged)
		if err == nil {
			t.Fatal("ValidateJWT should fail on an invalid signature, but passed")
		}
		if !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			t.Errorf("wrong error for forged token: %v", err)
		}
	})

	t.Run("Garbage", func(t *testing.T) {
		if _, err := auth.ValidateJWT("not-a-jwt"); err == nil {
			t.Error("ValidateJWT should fail on garbage input")
		}
	})
}
