package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clinicadelvalle/asistente/internal/infra/integration/tokko"
	logx "github.com/clinicadelvalle/asistente/pkg/logger"
)

const propertyTTL = 15 * time.Minute

// PropertyCache guarda resultados de búsqueda en Redis. Los errores de cache
// nunca rompen una búsqueda: ante cualquier falla se va directo a Tokko.
type PropertyCache struct {
	rdb *redis.Client
}

func NewPropertyCache(rdb *redis.Client) *PropertyCache {
	return &PropertyCache{rdb: rdb}
}

func SearchKey(params tokko.SearchParams) string {
	return fmt.Sprintf("propiedades:%s:%s:%s:%d:%.0f",
		strings.ToLower(strings.TrimSpace(params.Location)),
		strings.ToLower(strings.TrimSpace(params.OperationType)),
		strings.ToLower(strings.TrimSpace(params.PropertyType)),
		params.Rooms,
		params.MaxPrice,
	)
}

func (c *PropertyCache) Get(ctx context.Context, key string) ([]tokko.Property, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logx.Warn().Err(err).Str("key", key).Msg("Error al leer cache de propiedades")
		}
		return nil, false
	}

	var properties []tokko.Property
	if err := json.Unmarshal(raw, &properties); err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("Cache de propiedades corrupto, se descarta")
		c.rdb.Del(ctx, key)
		return nil, false
	}

	return properties, true
}

func (c *PropertyCache) Set(ctx context.Context, key string, properties []tokko.Property) {
	raw, err := json.Marshal(properties)
	if err != nil {
		logx.Warn().Err(err).Msg("No se pudo serializar el resultado para cache")
		return
	}

	if err := c.rdb.Set(ctx, key, raw, propertyTTL).Err(); err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("No se pudo escribir el cache de propiedades")
	}
}
