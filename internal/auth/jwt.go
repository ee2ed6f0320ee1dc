// Package auth issues and validates the JWTs that identify operator shell
// sessions. The token's JTI doubles as the key of the server-side MES
// session, so revoking the token also orphans the session.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims of an operator session.
type Claims struct {
	UserKey     string `json:"user_key"`
	UserName    string `json:"user_name"`
	CompanyCode string `json:"company_code"`
	jwt.RegisteredClaims
}

// TokenExpiry is the token lifetime. MES sessions don't survive much longer
// than a shift anyway, so there is no point issuing longer-lived tokens.
const TokenExpiry = 12 * time.Hour

// GenerateToken creates a new JWT for an operator with a unique JTI and
// returns the signed token along with its claims.
func GenerateToken(secret, userKey, userName, companyCode string) (string, *Claims, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", nil, fmt.Errorf("generating JTI: %w", err)
	}

	claims := &Claims{
		UserKey:     userKey,
		UserName:    userName,
		CompanyCode: companyCode,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", nil, fmt.Errorf("signing token: %w", err)
	}
	return signed, claims, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func ValidateToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// generateJTI creates a random token ID.
func generateJTI() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
