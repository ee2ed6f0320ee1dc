package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, issued, err := GenerateToken(secret, "operator1", "Kim Operator", "BWC40601")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if issued.ID == "" {
		t.Fatal("expected non-empty JTI")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserKey != "operator1" {
		t.Errorf("expected user_key 'operator1', got %q", claims.UserKey)
	}
	if claims.UserName != "Kim Operator" {
		t.Errorf("expected user_name 'Kim Operator', got %q", claims.UserName)
	}
	if claims.CompanyCode != "BWC40601" {
		t.Errorf("expected company_code 'BWC40601', got %q", claims.CompanyCode)
	}
	if claims.ID != issued.ID {
		t.Errorf("JTI mismatch: %q vs %q", claims.ID, issued.ID)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _, _ := GenerateToken("secret1", "operator1", "", "BWC40601")

	_, err := ValidateToken("secret2", token)
	if err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	if err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestTokenExpiry(t *testing.T) {
	secret := "test"
	token, _, _ := GenerateToken(secret, "operator1", "", "BWC40601")
	claims, _ := ValidateToken(secret, token)

	expiresAt := claims.ExpiresAt.Time
	expectedExpiry := time.Now().Add(TokenExpiry)

	// Should be within a few seconds.
	diff := expectedExpiry.Sub(expiresAt)
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}
