package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/clinicadelvalle/asistente/internal/infra/cache"
	"github.com/clinicadelvalle/asistente/internal/infra/integration/tokko"
	"github.com/clinicadelvalle/asistente/internal/infra/metrics"
	logx "github.com/clinicadelvalle/asistente/pkg/logger"
)

// PropertySearcher abstrae el cliente de Tokko para poder testear el handler.
type PropertySearcher interface {
	SearchProperties(ctx context.Context, params tokko.SearchParams) ([]tokko.Property, error)
}

type PropertiesHandler struct {
	Tokko PropertySearcher
	Cache *cache.PropertyCache // opcional
}

func NewPropertiesHandler(client PropertySearcher, propertyCache *cache.PropertyCache) *PropertiesHandler {
	return &PropertiesHandler{
		Tokko: client,
		Cache: propertyCache,
	}
}

type PropertiesResponse struct {
	Status string           `json:"status"`
	Data   []tokko.Property `json:"data"`
}

func (h *PropertiesHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	params := tokko.SearchParams{
		Location:      q.Get("ubicacion"),
		OperationType: q.Get("operacion"),
		PropertyType:  q.Get("tipo"),
	}
	if rooms, err := strconv.Atoi(q.Get("ambientes")); err == nil {
		params.Rooms = rooms
	}
	if maxPrice, err := strconv.ParseFloat(q.Get("precio_max"), 64); err == nil {
		params.MaxPrice = maxPrice
	}

	key := cache.SearchKey(params)
	if h.Cache != nil {
		if properties, ok := h.Cache.Get(ctx, key); ok {
			writeJSON(w, http.StatusOK, PropertiesResponse{Status: "success", Data: properties})
			return
		}
	}

	properties, err := h.Tokko.SearchProperties(ctx, params)
	if err != nil {
		logx.Error().Err(err).Msg("Error al buscar propiedades")
		metrics.RecordIntegrationError("tokko")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "error",
			"error":  "No se pudieron obtener las propiedades",
		})
		return
	}

	if h.Cache != nil {
		h.Cache.Set(ctx, key, properties)
	}

	writeJSON(w, http.StatusOK, PropertiesResponse{Status: "success", Data: properties})
}
