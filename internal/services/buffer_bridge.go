package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fastygo/adcontract/domain"
	"github.com/fastygo/adcontract/internal/infrastructure/buffer"
	"github.com/fastygo/adcontract/usecase"
)

const statusUpdatePriority = 3

// BufferBridge adapts the processor to the use case buffering port.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferStatusUpdate(_ context.Context, contractID int64, status domain.ContractStatus, at time.Time) error {
	if b == nil || b.processor == nil || contractID <= 0 || !status.Valid() {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(buffer.StatusUpdate{Status: string(status), UpdatedAt: at})
	if err != nil {
		return err
	}
	return b.processor.Enqueue(buffer.Item{
		Entity:    buffer.EntityContract,
		EntityID:  contractID,
		Operation: buffer.OperationUpdateStatus,
		Data:      payload,
		Priority:  statusUpdatePriority,
	})
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
