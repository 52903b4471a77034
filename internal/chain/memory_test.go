package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestMemoryRegistryPublishAndGet(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	key := HashBatchID("B1")
	value := HashAttestation(`{"batchId":"B1"}`)

	txHash, err := reg.Publish(ctx, key, value)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(txHash) != 66 {
		t.Fatalf("malformed tx hash %q", txHash)
	}

	got, found, err := reg.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found || got != value {
		t.Fatalf("got (%s, %v), want (%s, true)", got.Hex(), found, value.Hex())
	}
}

func TestMemoryRegistryWriteOnce(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	key := HashBatchID("B1")
	first := HashAttestation("first")
	second := HashAttestation("second")

	if _, err := reg.Publish(ctx, key, first); err != nil {
		t.Fatalf("first Publish: %v", err)
	}
	if _, err := reg.Publish(ctx, key, second); !errors.Is(err, ErrAlreadyPublished) {
		t.Fatalf("second Publish: got %v, want ErrAlreadyPublished", err)
	}

	// The first write must survive the rejected overwrite.
	got, found, err := reg.Get(ctx, key)
	if err != nil || !found {
		t.Fatalf("Get after rejected overwrite: (%v, %v)", found, err)
	}
	if got != first {
		t.Fatalf("stored value changed: got %s, want %s", got.Hex(), first.Hex())
	}
}

func TestMemoryRegistryRejectsZeroHashes(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	if _, err := reg.Publish(ctx, common.Hash{}, HashAttestation("v")); !errors.Is(err, ErrZeroHash) {
		t.Fatalf("zero key: got %v, want ErrZeroHash", err)
	}
	if _, err := reg.Publish(ctx, HashBatchID("B1"), common.Hash{}); !errors.Is(err, ErrZeroHash) {
		t.Fatalf("zero value: got %v, want ErrZeroHash", err)
	}
}

func TestMemoryRegistryAbsentKey(t *testing.T) {
	reg := NewMemoryRegistry()
	_, found, err := reg.Get(context.Background(), HashBatchID("missing"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Fatal("absent key reported as found")
	}
}

func TestMemoryRegistryDeterministicTxHash(t *testing.T) {
	ctx := context.Background()
	key := HashBatchID("B1")
	value := HashAttestation("v")

	a, err := NewMemoryRegistry().Publish(ctx, key, value)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	b, err := NewMemoryRegistry().Publish(ctx, key, value)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if a != b {
		t.Fatalf("tx hash not deterministic: %s vs %s", a, b)
	}
}

func TestMemoryRegistryReceipt(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	txHash, err := reg.Publish(ctx, HashBatchID("B1"), HashAttestation("v"))
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	receipt, err := reg.WaitReceipt(ctx, txHash)
	if err != nil {
		t.Fatalf("WaitReceipt: %v", err)
	}
	if receipt.TxHash != txHash || receipt.BlockNumber == 0 {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
}
