package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clawops/clawfleet-api/internal/application/assignment"
)

func TestKeyedLock_EsperaAcotadaDevuelveBusy(t *testing.T) {
	l := assignment.NewKeyedLock(50 * time.Millisecond)

	release, err := l.Acquire(context.Background(), "slot:m1/s1")
	require.NoError(t, err)
	defer release()

	// La clave está tomada: la segunda adquisición debe expirar, no bloquear.
	start := time.Now()
	_, err = l.Acquire(context.Background(), "slot:m1/s1")
	assert.ErrorIs(t, err, assignment.ErrBusy)
	assert.Less(t, time.Since(start), time.Second)
}

func TestKeyedLock_ReleaseDesbloquea(t *testing.T) {
	l := assignment.NewKeyedLock(500 * time.Millisecond)

	release, err := l.Acquire(context.Background(), "item:oso")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		release2, err := l.Acquire(context.Background(), "item:oso")
		assert.NoError(t, err)
		release2()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	release()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("la liberación no desbloqueó al que esperaba")
	}
}

func TestKeyedLock_MultiClaveTodoONada(t *testing.T) {
	l := assignment.NewKeyedLock(50 * time.Millisecond)

	release, err := l.Acquire(context.Background(), "slot:m1/s2")
	require.NoError(t, err)
	defer release()

	// Una de las dos claves está tomada: no debe quedar retenida la otra.
	_, err = l.Acquire(context.Background(), "slot:m1/s1", "slot:m1/s2")
	require.ErrorIs(t, err, assignment.ErrBusy)

	release2, err := l.Acquire(context.Background(), "slot:m1/s1")
	require.NoError(t, err, "la clave libre debe seguir disponible tras el fallo")
	release2()
}

func TestKeyedLock_ClavesDuplicadasNoInterbloquean(t *testing.T) {
	l := assignment.NewKeyedLock(500 * time.Millisecond)

	// Assign sobre el mismo artículo y ranura genera claves repetidas; la
	// deduplicación evita que el segundo intento espere contra sí mismo.
	release, err := l.Acquire(context.Background(), "item:oso", "item:oso")
	require.NoError(t, err)
	release()
}

func TestKeyedLock_ContextoCanceladoCortaLaEspera(t *testing.T) {
	l := assignment.NewKeyedLock(5 * time.Second)

	release, err := l.Acquire(context.Background(), "slot:m1/s1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err = l.Acquire(ctx, "slot:m1/s1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second, "la cancelación no debe esperar el timeout completo")
}
