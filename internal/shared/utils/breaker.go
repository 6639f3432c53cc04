package utils

import (
	"errors"
	"sync"
	"time"
)

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

var ErrBreakerOpen = errors.New("circuit breaker is open")

// Breaker protege una dependencia externa: tras maxFailures fallos seguidos
// se abre y rechaza llamadas hasta que pase resetTimeout. El mutex solo cubre
// las transiciones de estado, nunca la llamada protegida: varias llamadas
// pueden estar en vuelo a la vez.
type Breaker struct {
	maxFailures     int
	resetTimeout    time.Duration
	failureCount    int
	lastFailureTime time.Time
	state           BreakerState
	inFlightProbe   bool // en medio abierto solo pasa una llamada de prueba
	mu              sync.Mutex
}

func NewBreaker(maxFailures int, resetTimeout time.Duration) *Breaker {
	return &Breaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        BreakerClosed,
	}
}

func (b *Breaker) Execute(fn func() error) error {
	probe := false

	b.mu.Lock()
	switch b.state {
	case BreakerOpen:
		if time.Since(b.lastFailureTime) <= b.resetTimeout {
			b.mu.Unlock()
			return ErrBreakerOpen
		}
		b.state = BreakerHalfOpen
		b.failureCount = 0
		b.inFlightProbe = true
		probe = true
	case BreakerHalfOpen:
		if b.inFlightProbe {
			b.mu.Unlock()
			return ErrBreakerOpen
		}
		b.inFlightProbe = true
		probe = true
	}
	b.mu.Unlock()

	// La llamada corre fuera del lock: submissions concurrentes no se
	// serializan entre sí por culpa del breaker.
	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	if probe {
		b.inFlightProbe = false
	}

	if err != nil {
		b.failureCount++
		b.lastFailureTime = time.Now()

		if b.failureCount >= b.maxFailures || b.state == BreakerHalfOpen {
			b.state = BreakerOpen
		}
		return err
	}

	b.state = BreakerClosed
	b.failureCount = 0
	return nil
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
