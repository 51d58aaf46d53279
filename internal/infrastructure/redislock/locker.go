package redislock

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/clawops/clawfleet-api/internal/application/assignment"
)

// unlockScript libera la clave solo si el token coincide: una réplica nunca
// suelta el bloqueo de otra aunque su TTL haya expirado entre medias.
var unlockScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// Locker implementación distribuida de assignment.SlotLocker sobre Redis
// (SET NX + TTL). Para despliegues con varias réplicas del API, donde el
// registro de bloqueos en proceso no basta para serializar transiciones
// sobre la misma ranura.
type Locker struct {
	client *redis.Client
	wait   time.Duration // espera máxima total antes de ErrBusy
	ttl    time.Duration // caducidad de cada clave (red de seguridad ante caídas)
	retry  time.Duration // pausa entre reintentos de SET NX
}

// NewLocker construye el locker. wait acota la espera de Acquire; ttl debe
// superar con margen la duración de una transición.
func NewLocker(client *redis.Client, wait, ttl time.Duration) *Locker {
	return &Locker{client: client, wait: wait, ttl: ttl, retry: 25 * time.Millisecond}
}

var _ assignment.SlotLocker = (*Locker)(nil)

// Acquire toma todas las claves en orden lexicográfico o ninguna. Si la espera
// supera el límite devuelve assignment.ErrBusy liberando lo ya adquirido.
func (l *Locker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	ordered := dedupSorted(keys)
	token := uuid.New().String()
	deadline := time.Now().Add(l.wait)

	acquired := make([]string, 0, len(ordered))
	release := func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			// La liberación usa un contexto propio: debe intentarse aunque el
			// contexto de la petición ya esté cancelado.
			rctx, cancel := context.WithTimeout(context.Background(), time.Second)
			_ = unlockScript.Run(rctx, l.client, []string{acquired[i]}, token).Err()
			cancel()
		}
	}

	for _, key := range ordered {
		for {
			ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
			if err != nil {
				release()
				return nil, err
			}
			if ok {
				acquired = append(acquired, key)
				break
			}
			if time.Now().After(deadline) {
				release()
				return nil, assignment.ErrBusy
			}
			select {
			case <-time.After(l.retry):
			case <-ctx.Done():
				release()
				return nil, ctx.Err()
			}
		}
	}
	return release, nil
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
