package esi

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/evetrack/corphangar/internal/application/sync"
	"github.com/evetrack/corphangar/internal/domain"
	"github.com/evetrack/corphangar/pkg/config"
)

var _ sync.TokenProvider = (*ConfigTokenProvider)(nil)

// ConfigTokenProvider entrega tokens desde la configuración: un token por
// corporación (ESI_TOKENS) con fallback global (ESI_TOKEN). Los tokens de la
// fuente son JWT; antes de entregar uno se verifica su claim de expiración
// (sin validar la firma, eso es responsabilidad del emisor).
type ConfigTokenProvider struct {
	tokens   map[int64]string
	fallback string
	now      func() time.Time
}

// NewConfigTokenProvider construye el proveedor a partir de la configuración.
func NewConfigTokenProvider(cfg config.ESIConfig) *ConfigTokenProvider {
	return &ConfigTokenProvider{
		tokens:   cfg.TokenMap(),
		fallback: cfg.Token,
		now:      time.Now,
	}
}

// TokenFor devuelve la credencial de la corporación, o
// domain.ErrCredentialUnavailable si no hay ninguna utilizable.
func (p *ConfigTokenProvider) TokenFor(_ context.Context, corporationID int64) (string, error) {
	token, ok := p.tokens[corporationID]
	if !ok {
		token = p.fallback
	}
	if token == "" {
		return "", fmt.Errorf("%w: corporación %d", domain.ErrCredentialUnavailable, corporationID)
	}
	if err := p.checkExpiry(token); err != nil {
		return "", err
	}
	return token, nil
}

func (p *ConfigTokenProvider) checkExpiry(token string) error {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		// Tokens opacos (no-JWT) se entregan tal cual; la fuente los rechazará si no sirven.
		return nil
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if exp.Before(p.now()) {
		return fmt.Errorf("%w: token expirado en %s", domain.ErrCredentialUnavailable, exp.Format(time.RFC3339))
	}
	return nil
}
