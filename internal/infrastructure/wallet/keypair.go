package wallet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vortex-feed/pkg/helpers"
)

var (
	ErrNoKeypair = errors.New("wallet: no keypair configured")
	// ErrRejected means the keypair exists but cannot be used to sign.
	ErrRejected = errors.New("wallet: keypair rejected")
	ErrTimeout  = errors.New("wallet: connect timed out")
	ErrLocked   = errors.New("wallet: not connected")
)

// Keypair is a wallet backed by a solana-keygen JSON file. The key is only held in
// memory while connected.
type Keypair struct {
	path   string
	logger *logrus.Logger

	mu  sync.RWMutex
	key solana.PrivateKey
}

func NewKeypair(path string, logger *logrus.Logger) *Keypair {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &Keypair{path: path, logger: logger}
}

// Connect loads the keypair and returns its base58 address.
func (k *Keypair) Connect(ctx context.Context) (string, error) {
	if k.path == "" {
		return "", ErrNoKeypair
	}
	if _, err := os.Stat(k.path); errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNoKeypair, k.path)
	}
	type result struct {
		key solana.PrivateKey
		err error
	}
	done := make(chan result, 1)
	go func() {
		key, err := solana.PrivateKeyFromSolanaKeygenFile(k.path)
		done <- result{key, err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return "", ErrTimeout
	case res = <-done:
	}
	if res.err != nil {
		return "", fmt.Errorf("%w: %v", ErrRejected, res.err)
	}
	if len(res.key) != 64 {
		return "", ErrRejected
	}

	k.mu.Lock()
	k.key = res.key
	k.mu.Unlock()

	addr := res.key.PublicKey().String()
	k.logger.WithField("address", addr).Info("wallet connected")
	return addr, nil
}

func (k *Keypair) Disconnect(context.Context) error {
	k.mu.Lock()
	k.key = nil
	k.mu.Unlock()
	return nil
}

// Address is empty while disconnected.
func (k *Keypair) Address() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.key == nil {
		return ""
	}
	return k.key.PublicKey().String()
}

// PrivateKey returns the signing key of a connected wallet.
func (k *Keypair) PrivateKey() (solana.PrivateKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.key == nil {
		return nil, ErrLocked
	}
	return k.key, nil
}
