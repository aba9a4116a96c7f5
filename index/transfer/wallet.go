package transfer

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/toncenter/ton-activity-go/index/emulation"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton/wallet"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// MaxMessages is the number of internal messages v3 and v4 wallets accept
// in one external message.
const MaxMessages = 4

const DefaultMessageTTL = 5 * time.Minute

type BodyParams struct {
	Version     wallet.Version
	SubwalletId uint32
	Seqno       uint32
	ValidUntil  time.Time
	Messages    []*wallet.Message
}

// BuildWalletBody builds the unsigned body of a v3r2 or v4r2 wallet message.
func BuildWalletBody(p BodyParams) (*cell.Builder, error) {
	if len(p.Messages) == 0 {
		return nil, errors.New("at least one message is required")
	}
	if len(p.Messages) > MaxMessages {
		return nil, fmt.Errorf("for this type of wallet max %d messages can be sent in the same time", MaxMessages)
	}
	subwallet := p.SubwalletId
	if subwallet == 0 {
		subwallet = emulation.DefaultSubwalletId
	}

	payload := cell.BeginCell().MustStoreUInt(uint64(subwallet), 32).
		MustStoreUInt(uint64(p.ValidUntil.Unix()), 32).
		MustStoreUInt(uint64(p.Seqno), 32)

	switch p.Version {
	case wallet.V3R2:
	case wallet.V4R2:
		// simple send
		payload.MustStoreUInt(0, 8)
	default:
		return nil, fmt.Errorf("wallet version %d is not supported", p.Version)
	}

	for i, message := range p.Messages {
		if message == nil || message.InternalMessage == nil {
			return nil, fmt.Errorf("message %d is empty", i)
		}
		intMsg, err := tlb.ToCell(message.InternalMessage)
		if err != nil {
			return nil, fmt.Errorf("failed to convert internal message %d to cell: %w", i, err)
		}
		payload.MustStoreUInt(uint64(message.Mode), 8).MustStoreRef(intMsg)
	}
	return payload, nil
}

// Signer signs the hash of a wallet body.
type Signer interface {
	Sign(ctx context.Context, hash []byte) ([]byte, error)
}

// KeySigner signs with a local ed25519 key.
type KeySigner ed25519.PrivateKey

func (k KeySigner) Sign(_ context.Context, hash []byte) ([]byte, error) {
	if len(k) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("expected private key to be %d bytes, got %d bytes", ed25519.PrivateKeySize, len(k))
	}
	return ed25519.Sign(ed25519.PrivateKey(k), hash), nil
}

// ParseWalletVersion accepts the names the indexer uses for wallet types.
func ParseWalletVersion(name string) (wallet.Version, error) {
	switch name {
	case "v3r2", "wallet v3 r2", "wallet_v3r2":
		return wallet.V3R2, nil
	case "v4r2", "wallet v4 r2", "wallet_v4r2", "":
		return wallet.V4R2, nil
	}
	return 0, fmt.Errorf("wallet version %q is not supported", name)
}
