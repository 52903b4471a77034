package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
)

// The deployed registry exposes exactly two entry points.
const registryABI = `[
  {"inputs":[{"internalType":"bytes32","name":"batchIdHash","type":"bytes32"},{"internalType":"bytes32","name":"attestationHash","type":"bytes32"}],"name":"publish","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[{"internalType":"bytes32","name":"batchIdHash","type":"bytes32"}],"name":"get","outputs":[{"internalType":"bytes32","name":"","type":"bytes32"}],"stateMutability":"view","type":"function"}
]`

const receiptPollInterval = 2 * time.Second

// evmRegistry talks to the deployed registry contract over JSON-RPC and
// signs with the configured publisher key.
type evmRegistry struct {
	log      *logger.Logger
	eth      *ethclient.Client
	abi      abi.ABI
	contract common.Address
	chainID  *big.Int
	key      *ecdsa.PrivateKey
	from     common.Address
}

// NewEVMRegistry validates the full chain configuration up front;
// a missing setting fails here, before any request is served.
func NewEVMRegistry(cfg Config, baseLog *logger.Logger) (Registry, error) {
	if cfg.RPCURL == "" || cfg.ContractAddress == "" {
		return nil, errors.New("chain: CHAIN_RPC_URL and CONTRACT_ADDRESS must be set")
	}
	if cfg.PrivateKey == "" {
		return nil, errors.New("chain: PUBLISHER_PRIVATE_KEY must be set")
	}
	if cfg.ChainID == 0 {
		return nil, errors.New("chain: CHAIN_ID must be set")
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("chain: invalid publisher private key: %w", err)
	}
	parsed, err := abi.JSON(strings.NewReader(registryABI))
	if err != nil {
		return nil, fmt.Errorf("chain: parse registry abi: %w", err)
	}
	eth, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("chain: dial %s: %w", cfg.RPCURL, err)
	}

	from := crypto.PubkeyToAddress(key.PublicKey)
	log := baseLog.With("component", "EVMRegistry", "contract", cfg.ContractAddress, "chain_id", cfg.ChainID)
	log.Info("Registry client ready", "publisher", from.Hex())

	return &evmRegistry{
		log:      log,
		eth:      eth,
		abi:      parsed,
		contract: common.HexToAddress(cfg.ContractAddress),
		chainID:  big.NewInt(cfg.ChainID),
		key:      key,
		from:     from,
	}, nil
}

func (r *evmRegistry) PublisherAddress() string {
	return r.from.Hex()
}

func (r *evmRegistry) Publish(ctx context.Context, keyHash, valueHash common.Hash) (string, error) {
	nonce, err := r.eth.PendingNonceAt(ctx, r.from)
	if err != nil {
		return "", fmt.Errorf("chain: fetch nonce: %w", err)
	}
	gasPrice, err := r.eth.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("chain: fetch gas price: %w", err)
	}
	data, err := r.abi.Pack("publish", [32]byte(keyHash), [32]byte(valueHash))
	if err != nil {
		return "", fmt.Errorf("chain: pack publish call: %w", err)
	}
	gasLimit, err := r.eth.EstimateGas(ctx, ethereum.CallMsg{
		From:     r.from,
		To:       &r.contract,
		GasPrice: gasPrice,
		Data:     data,
	})
	if err != nil {
		return "", fmt.Errorf("chain: estimate gas: %w", err)
	}

	tx := types.NewTransaction(nonce, r.contract, big.NewInt(0), gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(r.chainID), r.key)
	if err != nil {
		return "", fmt.Errorf("chain: sign transaction: %w", err)
	}
	if err := r.eth.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("chain: broadcast transaction: %w", err)
	}

	txHash := signed.Hash().Hex()
	r.log.Info("Publish transaction broadcast", "tx_hash", txHash, "nonce", nonce, "gas_limit", gasLimit)
	return txHash, nil
}

// WaitReceipt polls until the transaction is mined. Confirmation time
// is unbounded; the ctx deadline is the only way out.
func (r *evmRegistry) WaitReceipt(ctx context.Context, txHash string) (Receipt, error) {
	hash := common.HexToHash(txHash)
	for {
		receipt, err := r.eth.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status == types.ReceiptStatusFailed {
				return Receipt{}, fmt.Errorf("chain: transaction %s reverted", txHash)
			}
			return Receipt{
				TxHash:      receipt.TxHash.Hex(),
				BlockNumber: receipt.BlockNumber.Uint64(),
			}, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return Receipt{}, fmt.Errorf("chain: fetch receipt: %w", err)
		}
		select {
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		case <-time.After(receiptPollInterval):
		}
	}
}

func (r *evmRegistry) Get(ctx context.Context, keyHash common.Hash) (common.Hash, bool, error) {
	data, err := r.abi.Pack("get", [32]byte(keyHash))
	if err != nil {
		return common.Hash{}, false, fmt.Errorf("chain: pack get call: %w", err)
	}
	out, err := r.eth.CallContract(ctx, ethereum.CallMsg{To: &r.contract, Data: data}, nil)
	if err != nil {
		return common.Hash{}, false, fmt.Errorf("chain: get call: %w", err)
	}
	results, err := r.abi.Unpack("get", out)
	if err != nil {
		return common.Hash{}, false, fmt.Errorf("chain: unpack get result: %w", err)
	}
	if len(results) != 1 {
		return common.Hash{}, false, fmt.Errorf("chain: get returned %d values", len(results))
	}
	raw, ok := results[0].([32]byte)
	if !ok {
		return common.Hash{}, false, fmt.Errorf("chain: get returned unexpected type %T", results[0])
	}
	value := common.Hash(raw)
	if value == (common.Hash{}) {
		// Never-written slots read back as zero.
		return common.Hash{}, false, nil
	}
	return value, true, nil
}
