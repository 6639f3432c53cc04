package events

import (
	"context"
	"encoding/json"
	"sync"

	sharedBus "github.com/davicafu/libreria/internal/shared/platform/bus"
)

// InMemoryEventBus implementa un bus de eventos para UN solo topic usando
// canales de Go. Sustituye al broker en ejecuciones locales y en tests de
// integración; cada suscriptor recibe el payload ya serializado ([]byte).
type InMemoryEventBus struct {
	subscribers []chan []byte
	mu          sync.RWMutex
	topic       string // Identificador del topic que maneja este bus
}

// Verifica en tiempo de compilación que cumple la interfaz
var _ sharedBus.EventBus = (*InMemoryEventBus)(nil)

// NewInMemoryEventBus crea un bus de eventos para un topic específico.
func NewInMemoryEventBus(topic string) *InMemoryEventBus {
	return &InMemoryEventBus{
		subscribers: make([]chan []byte, 0),
		topic:       topic,
	}
}

// Publish envía un evento a todos los suscriptores de este bus.
func (b *InMemoryEventBus) Publish(ctx context.Context, event interface{}) error {
	payloadBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	b.mu.RLock()
	subs := make([]chan []byte, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, subChan := range subs {
		select {
		case subChan <- payloadBytes:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe suscribe un nuevo oyente a este bus.
func (b *InMemoryEventBus) Subscribe(bufferSize int) <-chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	subChan := make(chan []byte, bufferSize)
	b.subscribers = append(b.subscribers, subChan)
	return subChan
}

// Topic devuelve el topic que maneja este bus.
func (b *InMemoryEventBus) Topic() string {
	return b.topic
}

// BackgroundConsumerChan conecta un canal de suscripción con un handler,
// imitando el bucle del ConsumerAdapter de Kafka.
func BackgroundConsumerChan(ctx context.Context, ch <-chan []byte, handler sharedBus.MessageHandler) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case payload := <-ch:
				// El bus en memoria no reentrega: el handler ya dejó
				// registrado el fallo antes de devolver el error.
				_ = handler.HandleMessage(ctx, "", payload)
			}
		}
	}()
}
