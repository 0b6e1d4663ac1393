package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError detalle de validación por campo.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// StockConflictResponse cuerpo 409 cuando el bloqueo propuesto deja remaining < 0.
// Incluye el máximo de reservas vinculante y el bloqueo máximo permitido.
type StockConflictResponse struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	RoomID         string `json:"room_id"`
	Date           string `json:"date,omitempty"`
	MaxBooked      int    `json:"max_booked"`
	SafeBlockLimit int    `json:"safe_block_limit"`
	Proposed       int    `json:"proposed_blocked_stock"`
}

// PartialBatchResponse cuerpo 207 cuando un lote quedó aplicado a medias.
type PartialBatchResponse struct {
	Code           string   `json:"code"`
	Message        string   `json:"message"`
	BatchID        string   `json:"batch_id,omitempty"`
	Succeeded      []string `json:"succeeded_dates"`
	Failed         []string `json:"failed_dates"`
	ReloadRequired bool     `json:"reload_required"`
}
