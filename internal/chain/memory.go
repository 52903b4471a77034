package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	mockPublisherAddress = "0x000000000000000000000000000000000000C0DE"
	mockBlockNumber      = 1
)

// memoryRegistry is the in-process registry variant used in development
// and tests. It mirrors the deployed contract's observable behavior:
// write-once keys, the all-zero absence sentinel, and an immediate
// receipt.
type memoryRegistry struct {
	mu      sync.Mutex
	entries map[common.Hash]common.Hash
}

func NewMemoryRegistry() Registry {
	return &memoryRegistry{entries: make(map[common.Hash]common.Hash)}
}

func (r *memoryRegistry) PublisherAddress() string {
	return mockPublisherAddress
}

func (r *memoryRegistry) Publish(_ context.Context, keyHash, valueHash common.Hash) (string, error) {
	if keyHash == (common.Hash{}) || valueHash == (common.Hash{}) {
		return "", ErrZeroHash
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[keyHash]; exists {
		return "", fmt.Errorf("%w: %s", ErrAlreadyPublished, keyHash.Hex())
	}
	r.entries[keyHash] = valueHash
	// Deterministic stand-in for a transaction hash.
	txHash := crypto.Keccak256Hash(keyHash.Bytes(), valueHash.Bytes())
	return txHash.Hex(), nil
}

func (r *memoryRegistry) WaitReceipt(_ context.Context, txHash string) (Receipt, error) {
	return Receipt{TxHash: txHash, BlockNumber: mockBlockNumber}, nil
}

func (r *memoryRegistry) Get(_ context.Context, keyHash common.Hash) (common.Hash, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value, ok := r.entries[keyHash]
	if !ok {
		return common.Hash{}, false, nil
	}
	return value, true, nil
}

// Seed force-writes an entry, bypassing the write-once check. Test-only
// hook for constructing mismatch scenarios.
func (r *memoryRegistry) Seed(keyHash, valueHash common.Hash) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[keyHash] = valueHash
}
