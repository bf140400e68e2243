package crypto

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gitlab.com/equivcheck-2025.net/internal/config"
	"gitlab.com/equivcheck-2025.net/internal/core/ports/primary"
	"gitlab.com/equivcheck-2025.net/internal/static/errs"
)

var _ primary.JWTService = (*JWTServiceImpl)(nil)

// defaultTokenTTL applies when the caller sets no exp claim.
const defaultTokenTTL = time.Hour

type JWTServiceImpl struct {
	HMACSecretKey string
}

func NewJWTService(jwtConfig *config.JwtConfig) *JWTServiceImpl {
	return &JWTServiceImpl{
		HMACSecretKey: jwtConfig.Secret,
	}
}

func (j *JWTServiceImpl) GenerateTokenHMAC(ctx context.Context, method string, claims map[string]interface{}) (string, error) {
	signingMethod, ok := jwt.GetSigningMethod(method).(*jwt.SigningMethodHMAC)
	if !ok {
		return "", fmt.Errorf("%w: %s", errs.UnsupportedSigningAlgo, method)
	}

	mapClaims := jwt.MapClaims{}
	for k, v := range claims {
		mapClaims[k] = v
	}
	if _, exists := mapClaims["exp"]; !exists {
		mapClaims["exp"] = time.Now().Add(defaultTokenTTL).Unix()
	}

	signed, err := jwt.NewWithClaims(signingMethod, mapClaims).SignedString([]byte(j.HMACSecretKey))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.GeneratingToken, err)
	}
	return signed, nil
}

func (j *JWTServiceImpl) VerifyTokenHMAC(ctx context.Context, token string, method string) (bool, error) {
	if _, ok := jwt.GetSigningMethod(method).(*jwt.SigningMethodHMAC); !ok {
		return false, fmt.Errorf("%w: %s", errs.UnsupportedSigningAlgo, method)
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", errs.UnsupportedSigningAlgo, t.Header["alg"])
		}
		return []byte(j.HMACSecretKey), nil
	}, jwt.WithValidMethods([]string{method}))
	if err != nil {
		return false, fmt.Errorf("%w: %v", errs.InvalidToken, err)
	}
	return parsed.Valid, nil
}
