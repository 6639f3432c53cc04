package events

import "strconv"

// Estos son contratos de integración, NO entidades del dominio.
// Se definen planos para intercambio entre contextos; los nombres de campo
// son estables (orderId, isbn, quantity) y no deben cambiar.
type OrderAccepted struct {
	OrderID  int64  `json:"orderId"`
	ISBN     string `json:"isbn"`
	Quantity int    `json:"quantity"`
}

func (e OrderAccepted) PartitionKey() string {
	return strconv.FormatInt(e.OrderID, 10)
}

type OrderDispatched struct {
	OrderID int64 `json:"orderId"`
}

func (e OrderDispatched) PartitionKey() string {
	return strconv.FormatInt(e.OrderID, 10)
}
