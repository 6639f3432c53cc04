package events

import (
	"encoding/json"
	"time"
)

// Base de todos los eventos de integración.
// Los consumidores deben ignorar campos adicionales desconocidos en Data.
type IntegrationEvent struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"` // contenido específico del evento

	// Key se usa como clave de partición en el broker; no viaja en el payload.
	Key string `json:"-"`
}

func (e IntegrationEvent) PartitionKey() string {
	return e.Key
}
