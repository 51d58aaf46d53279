package assignment

import (
	"context"
	"sort"
	"sync"
	"time"
)

// KeyedLock implementación en proceso de SlotLocker: un mutex por clave,
// materializado como canal de capacidad 1, con espera acotada. Suficiente
// para un despliegue de una sola réplica del API; para varias réplicas se usa
// el locker distribuido sobre Redis (internal/infrastructure/redislock).
type KeyedLock struct {
	wait time.Duration

	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	ch   chan struct{}
	refs int
}

// NewKeyedLock construye el registro de bloqueos. wait es la espera máxima
// total por Acquire antes de devolver ErrBusy.
func NewKeyedLock(wait time.Duration) *KeyedLock {
	return &KeyedLock{
		wait:  wait,
		locks: make(map[string]*lockEntry),
	}
}

// Acquire toma todas las claves (deduplicadas, en orden lexicográfico) o
// ninguna. Si la espera total supera el límite configurado devuelve ErrBusy
// liberando lo ya adquirido; nunca se bloquea indefinidamente.
func (l *KeyedLock) Acquire(ctx context.Context, keys ...string) (func(), error) {
	ordered := dedupSorted(keys)
	deadline := time.Now().Add(l.wait)

	acquired := make([]string, 0, len(ordered))
	release := func() {
		// Liberar en orden inverso al adquirido.
		for i := len(acquired) - 1; i >= 0; i-- {
			l.unlock(acquired[i])
		}
	}

	for _, key := range ordered {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			release()
			return nil, ErrBusy
		}
		timer := time.NewTimer(remaining)
		select {
		case l.entry(key).ch <- struct{}{}:
			timer.Stop()
			acquired = append(acquired, key)
		case <-timer.C:
			l.unref(key)
			release()
			return nil, ErrBusy
		case <-ctx.Done():
			timer.Stop()
			l.unref(key)
			release()
			return nil, ctx.Err()
		}
	}
	return release, nil
}

// entry devuelve el canal de la clave, creándolo si hace falta, e incrementa
// su contador de referencias para poder limpiar el mapa al liberar.
func (l *KeyedLock) entry(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.locks[key]
	if !ok {
		e = &lockEntry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	return e
}

func (l *KeyedLock) unlock(key string) {
	l.mu.Lock()
	e := l.locks[key]
	l.mu.Unlock()
	<-e.ch
	l.unref(key)
}

func (l *KeyedLock) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.locks[key]
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

func dedupSorted(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
