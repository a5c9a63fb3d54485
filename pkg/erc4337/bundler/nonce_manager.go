package bundler

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/gasless-vote/pkg/logger"
)

// NonceFetcher reads the EntryPoint nonce for a sender.
type NonceFetcher func(ctx context.Context, sender common.Address) (*big.Int, error)

// NonceManager keeps the next nonce per sender so that an operation already
// accepted by the bundler, but not mined yet, never has its nonce handed out
// again.
type NonceManager struct {
	// Key: sender address hex, Value: next nonce to use
	pendingNonces map[string]*big.Int
	mu            sync.Mutex
	logger        logger.Logger
}

func NewNonceManager(lgr logger.Logger) *NonceManager {
	return &NonceManager{
		pendingNonces: make(map[string]*big.Int),
		logger:        logger.Component(lgr, "nonce-manager"),
	}
}

// NextNonce always reads the on-chain nonce and returns max(on-chain, cached).
func (nm *NonceManager) NextNonce(ctx context.Context, sender common.Address, fetch NonceFetcher) (*big.Int, error) {
	onChainNonce, err := fetch(ctx, sender)
	if err != nil {
		return nil, err
	}

	nm.mu.Lock()
	defer nm.mu.Unlock()

	cachedNonce, hasCached := nm.pendingNonces[sender.Hex()]
	if !hasCached || onChainNonce.Cmp(cachedNonce) >= 0 {
		// first use, or pending ops were mined or dropped
		if hasCached {
			delete(nm.pendingNonces, sender.Hex())
		}
		return new(big.Int).Set(onChainNonce), nil
	}

	nm.logger.Debug("using cached nonce ahead of chain", "sender", sender.Hex(), "cached", cachedNonce.String(), "onChain", onChainNonce.String())
	return new(big.Int).Set(cachedNonce), nil
}

// MarkSubmitted records that nonce was accepted by the bundler for sender.
func (nm *NonceManager) MarkSubmitted(sender common.Address, nonce *big.Int) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	next := new(big.Int).Add(nonce, big.NewInt(1))
	if cached, ok := nm.pendingNonces[sender.Hex()]; ok && cached.Cmp(next) > 0 {
		return
	}
	nm.pendingNonces[sender.Hex()] = next
}

// Reset forgets the cached nonce for sender, so the next NextNonce returns
// the on-chain value.
func (nm *NonceManager) Reset(sender common.Address) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	delete(nm.pendingNonces, sender.Hex())
}
