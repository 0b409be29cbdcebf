package tokko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	logx "github.com/clinicadelvalle/asistente/pkg/logger"
)

const defaultBaseURL = "https://www.tokkobroker.com/api/v1"

// IDs internos de Tokko, con las variantes en castellano que usa la gente.
var operationTypeMap = map[string]string{
	"rent":     "1",
	"alquiler": "1",
	"sale":     "2",
	"venta":    "2",
}

var propertyTypeMap = map[string]string{
	"apartment":       "2",
	"departamento":    "2",
	"house":           "3",
	"casa":            "3",
	"land":            "1",
	"terreno":         "1",
	"garage":          "10",
	"cochera":         "10",
	"industrial ship": "12",
	"nave industrial": "12",
	"local":           "7",
	"condo":           "13",
	"ph":              "13",
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SearchProperties consulta el listado de propiedades con los filtros dados.
// El filtro de ambientes es por igualdad exacta.
func (c *Client) SearchProperties(ctx context.Context, params SearchParams) ([]Property, error) {
	filters := map[string]any{}

	if loc := strings.TrimSpace(params.Location); loc != "" {
		filters["locations"] = []string{loc}
	}
	if id, ok := operationTypeMap[strings.ToLower(strings.TrimSpace(params.OperationType))]; ok {
		filters["operation_id"] = id
	}
	if id, ok := propertyTypeMap[strings.ToLower(strings.TrimSpace(params.PropertyType))]; ok {
		filters["type_id"] = id
	}
	if params.Rooms > 0 {
		filters["room_amount"] = strconv.Itoa(params.Rooms)
	}
	if params.MaxPrice > 0 {
		filters["price_max"] = strconv.FormatFloat(params.MaxPrice, 'f', -1, 64)
	}

	rawFilters, err := json.Marshal(filters)
	if err != nil {
		return nil, fmt.Errorf("error al armar filtros: %w", err)
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("format", "json")
	q.Set("limit", "0")
	q.Set("filters", string(rawFilters))

	reqURL := fmt.Sprintf("%s/property/?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fallo al consultar Tokko: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		logx.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("Error en la API de Tokko")
		return nil, fmt.Errorf("tokko respondió status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("respuesta inválida de Tokko: %w", err)
	}

	properties := make([]Property, 0, len(result.Objects))
	for _, raw := range result.Objects {
		properties = append(properties, formatProperty(raw))
	}

	logx.Info().Int("count", len(properties)).Msg("Búsqueda de propiedades completada")
	return properties, nil
}

func formatProperty(raw rawProperty) Property {
	var operation rawOperation
	for _, op := range raw.Operations {
		if len(op.Prices) > 0 {
			operation = op
			break
		}
	}

	var price float64
	var currency string
	if len(operation.Prices) > 0 {
		price = operation.Prices[0].Price
		currency = operation.Prices[0].Currency
	}

	operationType := operation.OperationType
	if operationType == "" {
		operationType = "Alquiler"
	}

	features := []string{}
	if raw.ParkingAmount > 0 {
		features = append(features, "Cochera")
	}
	if raw.BalconyAmount > 0 {
		features = append(features, "Balcón")
	}
	if raw.HasPool {
		features = append(features, "Pileta")
	}
	if raw.HasGrill {
		features = append(features, "Parrilla")
	}
	if raw.HasGarden {
		features = append(features, "Jardín")
	}

	var imageURL string
	for _, photo := range raw.Photos {
		if photo.Image != "" {
			imageURL = photo.Image
			break
		}
	}

	area := "N/A"
	if raw.TotalSurface != "" {
		area = raw.TotalSurface + " m²"
	}

	return Property{
		Title:         raw.PublicationTitle,
		Address:       raw.Location.Address,
		Price:         price,
		Currency:      currency,
		OperationType: operationType,
		Area:          area,
		Rooms:         raw.RoomAmount,
		Bathrooms:     raw.BathroomAmount,
		Expenses:      raw.Expenses,
		Features:      features,
		Description:   raw.Description,
		ImageURL:      imageURL,
		URL:           raw.PublicURL,
	}
}
