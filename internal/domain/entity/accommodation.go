package entity

// Accommodation agrupa las habitaciones de un partner (dueño del hotel).
type Accommodation struct {
	ID        string
	PartnerID string
	Name      string
}
