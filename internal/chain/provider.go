package chain

import (
	"fmt"
	"strings"
	"sync"

	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
)

var (
	singletonOnce sync.Once
	singleton     Registry
	singletonErr  error
)

// Singleton returns the process-wide registry client, constructing it
// on first use. Key derivation and contract binding are paid once; the
// returned client is shared by every in-flight request.
func Singleton(cfg Config, log *logger.Logger) (Registry, error) {
	singletonOnce.Do(func() {
		singleton, singletonErr = newRegistry(cfg, log)
	})
	return singleton, singletonErr
}

func newRegistry(cfg Config, log *logger.Logger) (Registry, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case "", "mock":
		log.Info("Using in-memory registry", "chain", cfg.ChainName)
		return NewMemoryRegistry(), nil
	case "live":
		return NewEVMRegistry(cfg, log)
	default:
		return nil, fmt.Errorf("chain: unknown CHAIN_MODE %q (want mock or live)", cfg.Mode)
	}
}
