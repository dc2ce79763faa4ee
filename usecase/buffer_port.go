package usecase

import (
	"context"
	"time"

	"github.com/fastygo/adcontract/domain"
)

// OperationBuffer abstracts the buffer processor so use cases stay storage-agnostic.
type OperationBuffer interface {
	// BufferStatusUpdate stores a contract status write that the primary store rejected,
	// to be replayed later.
	BufferStatusUpdate(ctx context.Context, contractID int64, status domain.ContractStatus, at time.Time) error
}
