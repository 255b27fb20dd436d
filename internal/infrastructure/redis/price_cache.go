package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/evetrack/corphangar/internal/application/sync"
	"github.com/evetrack/corphangar/pkg/logger"
)

const priceCacheKey = "corphangar:prices"

var _ sync.PriceCatalog = (*PriceCache)(nil)

// PriceFetcher origen de la tabla de precios (el cliente de la fuente de inventario).
type PriceFetcher interface {
	FetchPrices(ctx context.Context) (map[int64]decimal.Decimal, error)
}

// PriceCache cache de la tabla global de precios sobre Redis con TTL acotado.
// La staleness de precios es aceptable; un fallo total de precios degrada la
// valuación a cero pero nunca aborta el ciclo.
type PriceCache struct {
	client  *redis.Client
	fetcher PriceFetcher
	ttl     time.Duration
	log     *logger.Logger
}

// NewPriceCache construye el cache. ttl <= 0 usa 2 horas.
func NewPriceCache(client *redis.Client, fetcher PriceFetcher, ttl time.Duration, log *logger.Logger) *PriceCache {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &PriceCache{client: client, fetcher: fetcher, ttl: ttl, log: log}
}

// Prices devuelve la tabla de precios: primero Redis, luego la fuente. Ante
// fallo de ambos devuelve el mapa vacío, no error duro.
func (p *PriceCache) Prices(ctx context.Context) (map[int64]decimal.Decimal, error) {
	raw, err := p.client.Get(ctx, priceCacheKey).Bytes()
	if err == nil {
		var prices map[int64]decimal.Decimal
		if jsonErr := json.Unmarshal(raw, &prices); jsonErr == nil {
			return prices, nil
		}
		// Payload corrupto: se descarta y se refresca desde la fuente.
		p.client.Del(ctx, priceCacheKey)
	} else if err != redis.Nil {
		p.log.Warn().Err(err).Msg("cache de precios no disponible; se consulta la fuente")
	}

	prices, err := p.fetcher.FetchPrices(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("fetch de precios falló; valuación degradada a cero")
		return map[int64]decimal.Decimal{}, nil
	}

	if raw, err := json.Marshal(prices); err == nil {
		if err := p.client.Set(ctx, priceCacheKey, raw, p.ttl).Err(); err != nil {
			p.log.Warn().Err(err).Msg("no se pudo cachear la tabla de precios")
		}
	}
	return prices, nil
}
