package entity

// RoomInventory es un tipo de habitación vendible con su stock físico total.
// TotalStock se define al crear la habitación y aquí es de solo lectura.
type RoomInventory struct {
	RoomID          string
	AccommodationID string
	Name            string
	TotalStock      int
}

// RoomWindow es una habitación con las políticas registradas dentro de una ventana de fechas.
// Las fechas sin fila son "no registradas".
type RoomWindow struct {
	Room     RoomInventory
	Policies []DailyPolicy
}
