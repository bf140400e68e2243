package crypto

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/equivcheck-2025.net/internal/config"
	"gitlab.com/equivcheck-2025.net/internal/static/errs"
)

func TestJWTService(t *testing.T) {
	ctx := context.Background()
	svc := NewJWTService(&config.JwtConfig{Secret: "s3cret"})

	for _, method := range []string{"HS256", "HS384", "HS512"} {
		t.Run(method, func(t *testing.T) {
			token, err := svc.GenerateTokenHMAC(ctx, method, map[string]interface{}{"sub": "ci"})
			require.NoError(t, err)

			valid, err := svc.VerifyTokenHMAC(ctx, token, method)
			require.NoError(t, err)
			assert.True(t, valid)
		})
	}
}

func TestJWTService_Rejects(t *testing.T) {
	ctx := context.Background()
	svc := NewJWTService(&config.JwtConfig{Secret: "s3cret"})
	other := NewJWTService(&config.JwtConfig{Secret: "other"})

	token, err := svc.GenerateTokenHMAC(ctx, "HS256", nil)
	require.NoError(t, err)

	_, err = other.VerifyTokenHMAC(ctx, token, "HS256")
	assert.ErrorIs(t, err, errs.InvalidToken)

	_, err = svc.VerifyTokenHMAC(ctx, token, "HS512")
	assert.ErrorIs(t, err, errs.InvalidToken)

	expired, err := svc.GenerateTokenHMAC(ctx, "HS256", map[string]interface{}{
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	require.NoError(t, err)
	_, err = svc.VerifyTokenHMAC(ctx, expired, "HS256")
	assert.ErrorIs(t, err, errs.InvalidToken)

	_, err = svc.GenerateTokenHMAC(ctx, "RS256", nil)
	assert.ErrorIs(t, err, errs.UnsupportedSigningAlgo)
	_, err = svc.VerifyTokenHMAC(ctx, token, "none")
	assert.ErrorIs(t, err, errs.UnsupportedSigningAlgo)
}
