package chain

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// Receipt is the confirmation of a mined publish transaction.
type Receipt struct {
	TxHash      string
	BlockNumber uint64
}

var (
	// ErrZeroHash rejects the all-zero digest, which the registry
	// reserves as its absence sentinel.
	ErrZeroHash = errors.New("chain: zero hash is reserved for absent entries")
	// ErrAlreadyPublished surfaces the registry's write-once rule.
	ErrAlreadyPublished = errors.New("chain: key already has a published value")
)

// Registry is the two-function hash registry the service publishes to
// and verifies against. Implementations must be safe for concurrent use.
type Registry interface {
	// Publish submits a (keyHash, valueHash) pair and returns the
	// transaction hash without waiting for confirmation.
	Publish(ctx context.Context, keyHash, valueHash common.Hash) (string, error)
	// WaitReceipt blocks until the transaction is mined. It carries no
	// internal timeout; callers bound it through ctx.
	WaitReceipt(ctx context.Context, txHash string) (Receipt, error)
	// Get returns the stored value for a key. The second return is
	// false when the key has never been written (the contract returns
	// all zeroes for absent slots).
	Get(ctx context.Context, keyHash common.Hash) (common.Hash, bool, error)
	// PublisherAddress is the address transactions are signed with.
	PublisherAddress() string
}

// Config is everything the registry client needs, read once at startup
// and passed by reference.
type Config struct {
	// Mode selects the variant: "live" or "mock".
	Mode string
	// ChainName is recorded on the batch at publish time.
	ChainName string

	RPCURL          string
	ContractAddress string
	ChainID         int64
	// PrivateKey is the publisher's signing key, hex with or without
	// the 0x prefix.
	PrivateKey string
}
