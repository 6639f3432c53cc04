package utils

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestBreaker_AbreTrasFallosConsecutivos(t *testing.T) {
	b := NewBreaker(2, time.Minute)

	require.Error(t, b.Execute(func() error { return errBoom }))
	assert.Equal(t, BreakerClosed, b.State())

	require.Error(t, b.Execute(func() error { return errBoom }))
	assert.Equal(t, BreakerOpen, b.State())

	// Abierto: rechaza sin ejecutar.
	called := false
	err := b.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.False(t, called)
}

func TestBreaker_ExitoReseteaContador(t *testing.T) {
	b := NewBreaker(2, time.Minute)

	require.Error(t, b.Execute(func() error { return errBoom }))
	require.NoError(t, b.Execute(func() error { return nil }))
	require.Error(t, b.Execute(func() error { return errBoom }))

	// Un solo fallo tras el éxito: sigue cerrado.
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreaker_MedioAbiertoSeCierraConExito(t *testing.T) {
	b := NewBreaker(1, 10*time.Millisecond)

	require.Error(t, b.Execute(func() error { return errBoom }))
	assert.Equal(t, BreakerOpen, b.State())

	time.Sleep(20 * time.Millisecond)

	// La llamada de prueba tiene éxito y cierra el circuito.
	require.NoError(t, b.Execute(func() error { return nil }))
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreaker_LlamadasConcurrentesNoSeSerializan(t *testing.T) {
	b := NewBreaker(5, time.Minute)

	entered := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Execute(func() error {
				entered <- struct{}{}
				<-release
				return nil
			})
		}()
	}

	// Ambas llamadas deben estar dentro de fn a la vez: el breaker no
	// retiene el lock durante la llamada protegida.
	for i := 0; i < 2; i++ {
		select {
		case <-entered:
		case <-time.After(2 * time.Second):
			t.Fatal("las llamadas concurrentes se serializaron a través del breaker")
		}
	}

	close(release)
	wg.Wait()
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreaker_MedioAbiertoAdmiteUnaSolaPrueba(t *testing.T) {
	b := NewBreaker(1, 10*time.Millisecond)

	require.Error(t, b.Execute(func() error { return errBoom }))
	time.Sleep(20 * time.Millisecond)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Execute(func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	// Mientras la llamada de prueba está en vuelo, el resto se rechaza.
	err := b.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreaker_MedioAbiertoReabreConFallo(t *testing.T) {
	b := NewBreaker(3, 10*time.Millisecond)

	for i := 0; i < 3; i++ {
		require.Error(t, b.Execute(func() error { return errBoom }))
	}
	assert.Equal(t, BreakerOpen, b.State())

	time.Sleep(20 * time.Millisecond)

	// Un fallo en medio abierto reabre de inmediato.
	require.Error(t, b.Execute(func() error { return errBoom }))
	assert.Equal(t, BreakerOpen, b.State())
}
