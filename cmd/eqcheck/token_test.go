package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/equivcheck-2025.net/internal/adapter/crypto"
	"gitlab.com/equivcheck-2025.net/internal/config"
	"gitlab.com/equivcheck-2025.net/internal/static/errs"
)

func TestIssueToken(t *testing.T) {
	ctx := context.Background()
	svc := crypto.NewJWTService(&config.JwtConfig{Secret: "s3cret"})

	token, err := issueToken(ctx, svc, "HS384", "ci", time.Hour, time.Now())
	require.NoError(t, err)
	valid, err := svc.VerifyTokenHMAC(ctx, token, "HS384")
	require.NoError(t, err)
	assert.True(t, valid)

	expired, err := issueToken(ctx, svc, "HS256", "ci", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = svc.VerifyTokenHMAC(ctx, expired, "HS256")
	assert.ErrorIs(t, err, errs.InvalidToken)

	_, err = issueToken(ctx, svc, "HS256", "ci", 0, time.Now())
	assert.Error(t, err)
	_, err = issueToken(ctx, svc, "RS256", "ci", time.Hour, time.Now())
	assert.ErrorIs(t, err, errs.UnsupportedSigningAlgo)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_METHOD", "HS512")

	var out bytes.Buffer
	tokenCmd.SetOut(&out)
	tokenCmd.SetContext(context.Background())
	t.Cleanup(func() { tokenCmd.SetOut(nil) })
	require.NoError(t, tokenCmd.RunE(tokenCmd, nil))

	token := strings.TrimSpace(out.String())
	svc := crypto.NewJWTService(&config.JwtConfig{Secret: "cli-secret"})
	valid, err := svc.VerifyTokenHMAC(context.Background(), token, "HS512")
	require.NoError(t, err)
	assert.True(t, valid)

	t.Setenv("JWT_SECRET", "")
	assert.Error(t, tokenCmd.RunE(tokenCmd, nil))
}
