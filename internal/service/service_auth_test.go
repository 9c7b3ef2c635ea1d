package service

import (
	"context"
	"testing"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAppConfig() config.App {
	return config.App{
		TokenSignKey:  "test-secret",
		TokenIssuer:   "money-keeper-test",
		TokenDuration: time.Hour,
		Version:       "1.0.0",
	}
}

func TestAuthService_CreateAndParse(t *testing.T) {
	svc := NewAuthService(testAppConfig(), logger.Nop())
	ctx := context.Background()

	token, err := svc.CreateToken(ctx, 42)
	require.NoError(t, err)
	require.NotEmpty(t, token.SignedString)

	parsed, err := svc.ParseToken(ctx, token.SignedString)
	require.NoError(t, err)
	assert.Equal(t, int64(42), parsed.UserID)
}

func TestAuthService_CreateTokenErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewAuthService(testAppConfig(), logger.Nop()).CreateToken(ctx, 0)
	assert.ErrorIs(t, err, ErrValidationNoUserID)

	cfg := testAppConfig()
	cfg.TokenSignKey = ""
	_, err = NewAuthService(cfg, logger.Nop()).CreateToken(ctx, 1)
	assert.ErrorIs(t, err, ErrTokenCreationFailed)
}

func TestAuthService_ParseTokenRejects(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(testAppConfig(), logger.Nop())

	otherKey := testAppConfig()
	otherKey.TokenSignKey = "another-secret"
	foreign, err := NewAuthService(otherKey, logger.Nop()).CreateToken(ctx, 1)
	require.NoError(t, err)

	otherIssuer := testAppConfig()
	otherIssuer.TokenIssuer = "someone-else"
	wrongIssuer, err := NewAuthService(otherIssuer, logger.Nop()).CreateToken(ctx, 1)
	require.NoError(t, err)

	expiredCfg := testAppConfig()
	expiredCfg.TokenDuration = -time.Minute
	expired, err := NewAuthService(expiredCfg, logger.Nop()).CreateToken(ctx, 1)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"garbage":      "not-a-jwt",
		"foreign key":  foreign.SignedString,
		"wrong issuer": wrongIssuer.SignedString,
		"expired":      expired.SignedString,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ParseToken(ctx, raw)
			assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
		})
	}
}
