package repository

import "time"

// WidgetRecord represents a widget_records row. Data is stored
// msgpack-encoded.
type WidgetRecord struct {
	ID        string
	Position  int
	Version   string
	Type      string
	Name      string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}
