package events

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedBus "github.com/davicafu/libreria/internal/shared/platform/bus"
)

// ConsumerAdapter es el "oído" que escucha en Kafka y delega cada mensaje en
// un handler. El commit del offset ocurre tras procesar el mensaje, de modo
// que un mensaje sin procesar se vuelve a entregar (at-least-once).
type ConsumerAdapter struct {
	reader  *kafka.Reader
	handler sharedBus.MessageHandler
	log     *zap.Logger
}

func NewConsumerAdapter(reader *kafka.Reader, handler sharedBus.MessageHandler, log *zap.Logger) *ConsumerAdapter {
	return &ConsumerAdapter{
		reader:  reader,
		handler: handler,
		log:     log,
	}
}

// Start inicia el bucle de consumo de mensajes en una goroutine.
func (c *ConsumerAdapter) Start(ctx context.Context) {
	c.log.Info("🎧 Iniciando consumidor de Kafka...",
		zap.String("topic", c.reader.Config().Topic),
		zap.Strings("brokers", c.reader.Config().Brokers),
	)

	go func() {
		for {
			// FetchMessage es una llamada bloqueante y no confirma el offset.
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				// Si el contexto se cancela, el error es normal y salimos limpiamente.
				if ctx.Err() != nil {
					c.log.Info("Consumidor de Kafka detenido.", zap.String("topic", c.reader.Config().Topic))
					return
				}
				c.log.Error("Error al leer mensaje de Kafka", zap.Error(err))
				continue
			}

			// Persist-then-ack: un error del handler es un fallo
			// reintentable y el offset no se confirma, así que el
			// mensaje se vuelve a entregar. Las anomalías que no deben
			// reintentarse las absorbe el propio handler.
			if err := c.handler.HandleMessage(ctx, string(msg.Key), msg.Value); err != nil {
				c.log.Warn("Mensaje no procesado, no se confirma el offset",
					zap.String("key", string(msg.Key)),
					zap.Error(err),
				)
				continue
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.log.Warn("Error al confirmar offset", zap.Error(err))
			}
		}
	}()
}
