package middleware

import (
	"sync"
	"time"
)

// RateLimiter ограничивает поток сообщений на пользователя скользящим окном.
// Для магазина это прежде всего защита очереди депозитов: без лимита один
// пользователь может завалить админов заявками с мусорными txid.
type RateLimiter struct {
	mu     sync.Mutex
	seen   map[int64][]time.Time
	limit  int
	window time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		seen:   make(map[int64][]time.Time),
		limit:  limit,
		window: window,
		stopCh: make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Close останавливает фоновую горутину очистки; бот вызывает его
// на остановке polling-цикла.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Allow регистрирует сообщение пользователя и отвечает, пускать ли его
// дальше: не больше limit сообщений за последние window.
func (rl *RateLimiter) Allow(userID int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	recent := pruneOlder(rl.seen[userID], now.Add(-rl.window))

	if len(recent) >= rl.limit {
		rl.seen[userID] = recent
		return false
	}

	rl.seen[userID] = append(recent, now)
	return true
}

// cleanup периодически выкидывает записи ушедших пользователей,
// чтобы карта не росла бесконечно.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-rl.window)
			for userID, times := range rl.seen {
				recent := pruneOlder(times, cutoff)
				if len(recent) == 0 {
					delete(rl.seen, userID)
				} else {
					rl.seen[userID] = recent
				}
			}
			rl.mu.Unlock()
		}
	}
}

// pruneOlder оставляет только отметки свежее cutoff.
func pruneOlder(times []time.Time, cutoff time.Time) []time.Time {
	var recent []time.Time
	for _, t := range times {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	return recent
}
