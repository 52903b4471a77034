package chain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// HashBatchID derives the registry key for a batch identifier. Keccak-256
// is the contract's own key derivation; sha256 or any other digest would
// verify against nothing.
func HashBatchID(batchID string) common.Hash {
	return crypto.Keccak256Hash([]byte(batchID))
}

// HashAttestation digests a canonical attestation JSON string into the
// registry value.
func HashAttestation(canonicalJSON string) common.Hash {
	return crypto.Keccak256Hash([]byte(canonicalJSON))
}
