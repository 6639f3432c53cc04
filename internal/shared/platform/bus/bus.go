package bus

import "context"

type Keyer interface {
	PartitionKey() string
}

// La semántica de topic/nombre y formato del payload la decides en los adapters.
type EventBus interface {
	Publish(ctx context.Context, event interface{}) error
}

// MessageHandler define la interfaz que debe cumplir cualquier consumidor de
// eventos. Un retorno nil confirma el mensaje; un error indica un fallo
// reintentable y el adaptador NO confirma, de modo que el broker lo reentrega.
// Las anomalías no reintentables (payload malformado, pedido inexistente,
// duplicados) se absorben dentro del handler y devuelven nil.
type MessageHandler interface {
	HandleMessage(ctx context.Context, key string, payload []byte) error
}
