package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/adcontract/domain"
)

const duplicateKeyPrefix = "contract:dup:"

// DuplicateGuard remembers recently created contract terms as expiring Redis keys.
// A live key means an identical request was accepted inside the window.
type DuplicateGuard struct {
	client *redislib.Client
	window time.Duration
}

func NewDuplicateGuard(client *redislib.Client, window time.Duration) *DuplicateGuard {
	if window <= 0 {
		window = 5 * time.Second
	}
	return &DuplicateGuard{client: client, window: window}
}

func (g *DuplicateGuard) IsDuplicate(ctx context.Context, terms domain.ContractTerms, _ time.Time) (bool, error) {
	n, err := g.client.Exists(ctx, g.key(terms)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (g *DuplicateGuard) Remember(ctx context.Context, contract *domain.Contract, _ time.Time) error {
	if contract == nil {
		return domain.ErrInvalidPayload
	}
	return g.client.Set(ctx, g.key(contract.Terms()), contract.ContractNumber, g.window).Err()
}

func (g *DuplicateGuard) key(terms domain.ContractTerms) string {
	sum := sha256.Sum256([]byte(terms.Fingerprint()))
	return duplicateKeyPrefix + hex.EncodeToString(sum[:])
}
