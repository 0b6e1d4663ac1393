package dto

import "github.com/shopspring/decimal"

// AvailabilityRequest body para POST /api/rate-calendar/availability.
type AvailabilityRequest struct {
	TotalStock      int `json:"total_stock" validate:"min=0"`
	BookedStock     int `json:"booked_stock" validate:"min=0"`
	ProposedBlocked int `json:"proposed_blocked_stock" validate:"min=0"`
}

// AvailabilityResponse resultado de la calculadora (total en vivo de la UI).
type AvailabilityResponse struct {
	Remaining      int  `json:"remaining"`
	Safe           bool `json:"safe"`
	SafeBlockLimit int  `json:"safe_block_limit"`
}

// SinglePolicyRequest body del editor de una fecha.
// Price nulo se rechaza; IsActive omitido = true.
type SinglePolicyRequest struct {
	Price        *decimal.Decimal `json:"price"`
	BlockedStock int              `json:"blocked_stock" validate:"min=0"`
	IsActive     *bool            `json:"is_active"`
}

// BulkPolicyRequest body del editor por rango. Weekdays vacío = todos los días.
type BulkPolicyRequest struct {
	StartDate    string           `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string           `json:"end_date" validate:"required,datetime=2006-01-02"`
	Weekdays     []string         `json:"weekdays" validate:"omitempty,max=7,dive,required"`
	Price        *decimal.Decimal `json:"price"`
	BlockedStock int              `json:"blocked_stock" validate:"min=0"`
	IsActive     *bool            `json:"is_active"`
}

// WindowQuery parámetros de GET .../window.
type WindowQuery struct {
	StartDate string `query:"start" validate:"required,datetime=2006-01-02"`
	EndDate   string `query:"end" validate:"required,datetime=2006-01-02"`
}

// DayPolicyResponse una celda del calendario. Price nulo = fecha no registrada.
type DayPolicyResponse struct {
	Date         string           `json:"date"`
	Weekday      string           `json:"weekday"`
	Price        *decimal.Decimal `json:"price"`
	Registered   bool             `json:"registered"`
	BlockedStock int              `json:"blocked_stock"`
	BookedStock  int              `json:"booked_stock"`
	Remaining    int              `json:"remaining"`
	IsActive     bool             `json:"is_active"`
	Sellable     bool             `json:"sellable"`
}

// RoomWindowResponse una habitación con todas las fechas de la ventana.
type RoomWindowResponse struct {
	RoomID     string              `json:"room_id"`
	Name       string              `json:"name"`
	TotalStock int                 `json:"total_stock"`
	Days       []DayPolicyResponse `json:"days"`
}

// WindowResponse ventana de inventario de un alojamiento.
type WindowResponse struct {
	AccommodationID string               `json:"accommodation_id"`
	StartDate       string               `json:"start_date"`
	EndDate         string               `json:"end_date"`
	Rooms           []RoomWindowResponse `json:"rooms"`
}

// SinglePreviewResponse vista previa del editor de una fecha.
type SinglePreviewResponse struct {
	RoomID       string               `json:"room_id"`
	Date         string               `json:"date"`
	TotalStock   int                  `json:"total_stock"`
	BookedStock  int                  `json:"booked_stock"`
	Availability AvailabilityResponse `json:"availability"`
}

// BulkPreviewResponse vista previa del editor por rango.
type BulkPreviewResponse struct {
	RoomID       string               `json:"room_id"`
	Weekdays     []string             `json:"weekdays"`
	Dates        []string             `json:"dates"`
	DateCount    int                  `json:"date_count"`
	TotalStock   int                  `json:"total_stock"`
	MaxBooked    int                  `json:"max_booked"`
	MaxBookedOn  string               `json:"max_booked_on"`
	Availability AvailabilityResponse `json:"availability"`
}

// SubmitResponse resultado de un envío exitoso con la ventana recargada.
// Window es nulo si la recarga falló; la habitación queda marcada para recargar.
type SubmitResponse struct {
	BatchID string              `json:"batch_id"`
	RoomID  string              `json:"room_id"`
	Dates   []string            `json:"dates"`
	Updated int                 `json:"updated"`
	Window  *RoomWindowResponse `json:"window"`
}
