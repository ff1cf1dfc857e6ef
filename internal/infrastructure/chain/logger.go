package chain

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vortex-feed/internal/domain/entity"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
)

// logPostDiscriminator selects the log_post instruction of the Anchor program.
var logPostDiscriminator = func() [8]byte {
	sum := sha256.Sum256([]byte("global:log_post"))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}()

// Signer provides the connected wallet's key.
type Signer interface {
	PrivateKey() (solana.PrivateKey, error)
}

type rpcAPI interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// Logger submits log_post instructions signed by the connected wallet.
type Logger struct {
	rpc     rpcAPI
	program solana.PublicKey
	signer  Signer
	logger  *logrus.Logger
}

func NewLogger(rpcURL, programID string, signer Signer, logger *logrus.Logger) (*Logger, error) {
	program, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id %q: %w", programID, err)
	}
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &Logger{rpc: rpc.New(rpcURL), program: program, signer: signer, logger: logger}, nil
}

// logPostArgs mirrors log_post(display_name, post_hash, timestamp, action_type).
type logPostArgs struct {
	DisplayName string
	PostHash    []byte
	Timestamp   int64
	ActionType  uint8
}

func encodeLogPost(e entity.ChainEntry) ([]byte, error) {
	args, err := bin.MarshalBorsh(&logPostArgs{
		DisplayName: e.DisplayName,
		PostHash:    e.Hash,
		Timestamp:   e.Timestamp,
		ActionType:  uint8(e.Action),
	})
	if err != nil {
		return nil, err
	}
	return append(logPostDiscriminator[:], args...), nil
}

// LogPost returns the transaction signature.
func (l *Logger) LogPost(ctx context.Context, e entity.ChainEntry) (string, error) {
	if e.DisplayName == "" || len(e.Hash) == 0 {
		return "", errors.New("chain: display name and hash are required")
	}
	key, err := l.signer.PrivateKey()
	if err != nil {
		return "", err
	}
	payer := key.PublicKey()

	data, err := encodeLogPost(e)
	if err != nil {
		return "", fmt.Errorf("encode log_post: %w", err)
	}
	ix := solana.NewInstruction(l.program, solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, false, true),
	}, data)

	recent, err := l.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("latest blockhash: %w", err)
	}
	tx, err := solana.NewTransaction([]solana.Instruction{ix}, recent.Value.Blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return "", fmt.Errorf("build transaction: %w", err)
	}
	if _, err := tx.Sign(func(k solana.PublicKey) *solana.PrivateKey {
		if k.Equals(payer) {
			return &key
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := l.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}
	l.logger.WithFields(logrus.Fields{"signature": sig.String(), "action": e.Action.String()}).Info("post logged on chain")
	return sig.String(), nil
}
