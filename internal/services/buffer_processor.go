package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/adcontract/domain"
	"github.com/fastygo/adcontract/internal/infrastructure/buffer"
	"github.com/fastygo/adcontract/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the buffer is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	// Retention bounds how long an item may wait; zero keeps items until they are replayed.
	Retention time.Duration
}

// BufferProcessor replays contract writes that failed against the primary store.
type BufferProcessor struct {
	store     *buffer.Store
	monitor   ConnectionHealth
	contracts repository.ContractRepository
	logger    *zap.Logger
	cron      *cron.Cron
	cfg       ProcessorConfig
}

func NewBufferProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	contracts repository.ContractRepository,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:     store,
		monitor:   monitor,
		contracts: contracts,
		logger:    logger,
		cfg:       cfg,
		cron:      cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = bp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := bp.Drain(ctx); err != nil {
			bp.logger.Error("buffer drain failed", zap.Error(err))
		}
	})

	return bp
}

func (bp *BufferProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("buffer processor started")
}

// Stop waits for a running drain or until ctx is done.
func (bp *BufferProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("buffer processor stopped")
}

// Drain replays one batch. It is a no-op while the primary store is offline.
func (bp *BufferProcessor) Drain(ctx context.Context) error {
	if bp == nil || bp.store == nil {
		return nil
	}
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return nil
	}

	if bp.cfg.Retention > 0 {
		expired, err := bp.store.Cleanup(time.Now().Add(-bp.cfg.Retention))
		if err != nil {
			return err
		}
		if expired > 0 {
			bp.logger.Warn("expired buffer items dropped", zap.Int("count", expired))
		}
	}

	items, err := bp.store.GetBatch(bp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		err := bp.processItem(ctx, item)
		if err == nil {
			if err := bp.store.Remove(item); err != nil {
				bp.logger.Warn("failed to purge processed buffer item", zap.Error(err))
			}
			continue
		}

		bp.logger.Error("failed to process buffer item",
			zap.String("item_id", item.ID),
			zap.Int64("contract_id", item.EntityID),
			zap.Error(err))

		item.Retries++
		if item.Retries >= bp.cfg.MaxRetries {
			bp.logger.Warn("dropping buffer item (max retries reached)", zap.String("item_id", item.ID))
			if err := bp.store.Remove(item); err != nil {
				bp.logger.Warn("failed to purge dropped buffer item", zap.String("item_id", item.ID), zap.Error(err))
			}
			continue
		}
		if err := bp.store.Requeue(item); err != nil {
			bp.logger.Error("failed to requeue buffer item", zap.Error(err))
		}
	}
	return nil
}

// Enqueue persists item for a later drain.
func (bp *BufferProcessor) Enqueue(item buffer.Item) error {
	if bp == nil || bp.store == nil {
		return fmt.Errorf("buffer processor not configured")
	}
	return bp.store.Enqueue(item)
}

func (bp *BufferProcessor) Size() int {
	if bp == nil || bp.store == nil {
		return 0
	}
	size, err := bp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (bp *BufferProcessor) processItem(ctx context.Context, item buffer.Item) error {
	if item.Entity != buffer.EntityContract {
		return fmt.Errorf("unsupported entity %s", item.Entity)
	}
	if item.Operation != buffer.OperationUpdateStatus {
		return fmt.Errorf("unsupported operation %s", item.Operation)
	}

	var update buffer.StatusUpdate
	if err := json.Unmarshal(item.Data, &update); err != nil {
		return err
	}
	status, err := domain.ParseContractStatus(update.Status)
	if err != nil {
		return err
	}

	current, err := bp.contracts.GetByID(ctx, item.EntityID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeContractNotFound) {
			bp.logger.Warn("buffered contract no longer exists", zap.Int64("contract_id", item.EntityID))
			return nil
		}
		return err
	}
	// A cancellation or completion recorded since the item was buffered wins.
	if current.Status == status || current.Status.IsTerminal() {
		return nil
	}
	return bp.contracts.UpdateStatus(ctx, item.EntityID, status, update.UpdatedAt)
}
