package tokko

// Property es la ficha ya formateada que exponemos por la API propia.
type Property struct {
	Title         string   `json:"title"`
	Address       string   `json:"address"`
	Price         float64  `json:"price"`
	Currency      string   `json:"currency,omitempty"`
	OperationType string   `json:"operation_type"`
	Area          string   `json:"area"`
	Rooms         int      `json:"room_amount"`
	Bathrooms     int      `json:"bathroom_amount"`
	Expenses      float64  `json:"expenses"`
	Features      []string `json:"features"`
	Description   string   `json:"description"`
	ImageURL      string   `json:"image_url,omitempty"`
	URL           string   `json:"url"`
}

type SearchParams struct {
	Location      string
	OperationType string
	PropertyType  string
	Rooms         int
	MaxPrice      float64
}

// ---- formato crudo de la API de Tokko ----

type searchResponse struct {
	Objects []rawProperty `json:"objects"`
}

type rawProperty struct {
	PublicationTitle string         `json:"publication_title"`
	Description      string         `json:"description"`
	RoomAmount       int            `json:"room_amount"`
	BathroomAmount   int            `json:"bathroom_amount"`
	TotalSurface     string         `json:"total_surface"`
	Expenses         float64        `json:"expenses"`
	PublicURL        string         `json:"public_url"`
	ParkingAmount    int            `json:"parking_amount"`
	BalconyAmount    int            `json:"balcony_amount"`
	HasPool          bool           `json:"has_pool"`
	HasGrill         bool           `json:"has_grill"`
	HasGarden        bool           `json:"has_garden"`
	Location         rawLocation    `json:"location"`
	Operations       []rawOperation `json:"operations"`
	Photos           []rawPhoto     `json:"photos"`
}

type rawLocation struct {
	Address string `json:"address"`
}

type rawOperation struct {
	OperationType string     `json:"operation_type"`
	Prices        []rawPrice `json:"prices"`
}

type rawPrice struct {
	Currency string  `json:"currency"`
	Price    float64 `json:"price"`
}

type rawPhoto struct {
	Image string `json:"image"`
}
