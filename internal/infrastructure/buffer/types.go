package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EntityContract = "contract"

	OperationUpdateStatus = "update_status"
)

const (
	minPriority     = 1
	maxPriority     = 5
	defaultPriority = 3
)

// Item is a write the primary store rejected, kept for later replay.
type Item struct {
	ID        string          `json:"id"`
	Entity    string          `json:"entity"`
	EntityID  int64           `json:"entity_id"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

// StatusUpdate is the payload of an OperationUpdateStatus item.
type StatusUpdate struct {
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Item) normalize(now time.Time) {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority < minPriority || i.Priority > maxPriority {
		i.Priority = defaultPriority
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = now
	}
}

// key orders items by priority, then age.
func (i *Item) key() []byte {
	return []byte(formatKey(i.Priority, i.Timestamp, i.ID))
}
