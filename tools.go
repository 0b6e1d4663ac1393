//go:build tools

// Dependencias de herramientas: swag genera docs/swagger.json a partir de las anotaciones godoc
// de internal/interfaces/http (swag init -g cmd/api/main.go -o docs).
package tools

import (
	_ "github.com/swaggo/swag/cmd/swag"
)
