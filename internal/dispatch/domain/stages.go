package domain

import (
	sharedEvents "github.com/davicafu/libreria/internal/shared/events"
)

// El despacho es un pipeline de dos etapas puras: empaquetar y etiquetar.
// Ninguna etapa hace I/O; la durabilidad y los reintentos viven en el
// adaptador del broker. Cada etapa puede ejecutarse suelta (tests unitarios)
// o encadenada con la otra, fusionada o a través de un canal intermedio.

// PackStage modela el paso físico de "meter en la caja": proyecta el evento
// de aceptación a la identidad del pedido.
type PackStage interface {
	Pack(evt sharedEvents.OrderAccepted) int64
}

// LabelStage adjunta la marca de despacho al pedido empaquetado.
type LabelStage interface {
	Label(orderID int64) sharedEvents.OrderDispatched
}

// PackFunc adapta una función a PackStage.
type PackFunc func(evt sharedEvents.OrderAccepted) int64

func (f PackFunc) Pack(evt sharedEvents.OrderAccepted) int64 { return f(evt) }

// LabelFunc adapta una función a LabelStage.
type LabelFunc func(orderID int64) sharedEvents.OrderDispatched

func (f LabelFunc) Label(orderID int64) sharedEvents.OrderDispatched { return f(orderID) }

// Pack es la etapa de empaquetado por defecto.
func Pack(evt sharedEvents.OrderAccepted) int64 {
	return evt.OrderID
}

// Label es la etapa de etiquetado por defecto.
func Label(orderID int64) sharedEvents.OrderDispatched {
	return sharedEvents.OrderDispatched{OrderID: orderID}
}

// Verificación estática
var (
	_ PackStage  = PackFunc(Pack)
	_ LabelStage = LabelFunc(Label)
)
