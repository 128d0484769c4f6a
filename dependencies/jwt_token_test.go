package dependencies

import (
	"testing"

	commonEnums "github.com/Xushengqwer/go-common/models/enums"

	"github.com/Xushengqwer/auth_hub/config"
	"github.com/Xushengqwer/auth_hub/models/enums"
)

func newTestJWTUtility(secret string) JWTTokenInterface {
	return NewJWTUtility(&config.JWTConfig{
		SecretKey: secret,
		Issuer:    "auth-hub-test",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	jwtUtil := newTestJWTUtility("test-secret")

	tokenStr, err := jwtUtil.GenerateAccessToken("user-1", enums.RoleBusiness, enums.StatusActive, commonEnums.PlatformApp)
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}

	claims, err := jwtUtil.ParseAccessToken(tokenStr)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user-1, got %s", claims.UserID)
	}
	if claims.Role != enums.RoleBusiness {
		t.Fatalf("expected business role, got %v", claims.Role)
	}
	if claims.Status != enums.StatusActive {
		t.Fatalf("expected active status, got %v", claims.Status)
	}
	if claims.Platform != commonEnums.PlatformApp {
		t.Fatalf("expected app platform, got %v", claims.Platform)
	}
	if claims.ID == "" {
		t.Fatalf("expected a JTI in claims")
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	tokenStr, err := newTestJWTUtility("secret-a").GenerateAccessToken("user-1", enums.RoleCustomer, enums.StatusActive, commonEnums.PlatformWeb)
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}

	if _, err := newTestJWTUtility("secret-b").ParseAccessToken(tokenStr); err == nil {
		t.Fatalf("expected error for token signed with another secret")
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	otherIssuer := NewJWTUtility(&config.JWTConfig{SecretKey: "test-secret", Issuer: "someone-else"})
	tokenStr, err := otherIssuer.GenerateAccessToken("user-1", enums.RoleCustomer, enums.StatusActive, commonEnums.PlatformWeb)
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}

	if _, err := newTestJWTUtility("test-secret").ParseAccessToken(tokenStr); err == nil {
		t.Fatalf("expected error for token with mismatched issuer")
	}
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	if _, err := newTestJWTUtility("test-secret").ParseAccessToken("not-a-jwt"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}
