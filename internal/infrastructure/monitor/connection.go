package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/adcontract/internal/infrastructure/buffer"
)

// Observer receives the result of every probe round.
type Observer interface {
	ObserveDependency(name string, online bool)
	ObserveBufferSize(n int)
}

// Monitor periodically probes Postgres, Redis and the local buffer.
// Nil dependencies are reported as disabled.
type Monitor struct {
	pg       *pgxpool.Pool
	redis    *redislib.Client
	buffer   *buffer.Store
	observer Observer

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(pg *pgxpool.Pool, redis *redislib.Client, buf *buffer.Store, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		pg:       pg,
		redis:    redis,
		buffer:   buf,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// WithObserver forwards probe results, typically to metrics.
func (m *Monitor) WithObserver(o Observer) *Monitor {
	m.observer = o
	return m
}

func (m *Monitor) Start() {
	m.Refresh()
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether the primary store accepts writes, so buffered
// operations can be replayed.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.PostgreSQL.healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs one probe round synchronously.
func (m *Monitor) Refresh() {
	bufferOK, bufferSize := m.checkBuffer()
	status := Status{
		PostgreSQL: Component{Enabled: m.pg != nil, Online: m.checkPostgres()},
		Redis:      Component{Enabled: m.redis != nil, Online: m.checkRedis()},
		Buffer:     Component{Enabled: m.buffer != nil, Online: bufferOK},
		BufferSize: bufferSize,
		LastCheck:  time.Now().UTC(),
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if previous.PostgreSQL.Online != status.PostgreSQL.Online && status.PostgreSQL.Enabled {
		m.logger.Info("postgres connectivity changed", zap.Bool("online", status.PostgreSQL.Online))
	}
	if m.observer != nil {
		m.observer.ObserveDependency("postgresql", status.PostgreSQL.Online)
		m.observer.ObserveDependency("redis", status.Redis.Online)
		m.observer.ObserveDependency("buffer", status.Buffer.Online)
		m.observer.ObserveBufferSize(bufferSize)
	}
}

func (m *Monitor) checkPostgres() bool {
	if m.pg == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return m.pg.Ping(ctx) == nil
}

func (m *Monitor) checkRedis() bool {
	if m.redis == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.redis.Ping(ctx).Err() == nil
}

func (m *Monitor) checkBuffer() (bool, int) {
	if m.buffer == nil {
		return false, 0
	}
	size, err := m.buffer.Size()
	if err != nil {
		m.logger.Warn("buffer size check failed", zap.Error(err))
		return false, size
	}
	return true, size
}
