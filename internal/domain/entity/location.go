package entity

import (
	"fmt"
	"time"
)

// Location representa una ubicación física (pasillo, estante, casilla). El triple es único.
type Location struct {
	ID          int64
	Aisle       int
	Shelf       string // una sola letra
	Bin         int
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Code devuelve la etiqueta legible, ej. "03-B-12".
func (l Location) Code() string {
	return fmt.Sprintf("%02d-%s-%02d", l.Aisle, l.Shelf, l.Bin)
}
