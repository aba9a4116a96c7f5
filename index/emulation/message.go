package emulation

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton/wallet"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// DefaultSubwalletId is the subwallet used by standard v3 and v4 wallets.
const DefaultSubwalletId = 698983191

const signatureBits = 512

// WalletState is what message building needs to know about the sender.
type WalletState struct {
	Address     *address.Address
	PublicKey   ed25519.PublicKey
	Version     wallet.Version
	SubwalletId uint32
	Initialized bool
}

func (w WalletState) subwallet() uint32 {
	if w.SubwalletId == 0 {
		return DefaultSubwalletId
	}
	return w.SubwalletId
}

// StateInit returns the code and data to deploy an uninitialized wallet, or
// nil when it is already deployed.
func (w WalletState) StateInit() (*tlb.StateInit, error) {
	if w.Initialized {
		return nil, nil
	}
	if len(w.PublicKey) != ed25519.PublicKeySize {
		return nil, errors.New("public key is required to deploy the wallet")
	}
	return wallet.GetStateInit(w.PublicKey, w.Version, w.subwallet())
}

// BuildExternalMessage wraps a wallet body into an external message. A nil
// signature leaves a zero placeholder, which emulation accepts with
// ignore_chksig.
func BuildExternalMessage(w WalletState, body *cell.Builder, signature []byte) (*tlb.ExternalMessage, error) {
	if w.Address == nil {
		return nil, errors.New("wallet address is required")
	}
	if signature == nil {
		signature = make([]byte, signatureBits/8)
	}
	if len(signature) != signatureBits/8 {
		return nil, fmt.Errorf("signature must be %d bytes, got %d", signatureBits/8, len(signature))
	}
	stateInit, err := w.StateInit()
	if err != nil {
		return nil, err
	}
	return &tlb.ExternalMessage{
		DstAddr:   w.Address,
		StateInit: stateInit,
		Body:      cell.BeginCell().MustStoreSlice(signature, signatureBits).MustStoreBuilder(body).EndCell(),
	}, nil
}

// SerializeExternalMessage encodes a message as a base64 BOC.
func SerializeExternalMessage(msg *tlb.ExternalMessage) (string, error) {
	c, err := tlb.ToCell(msg)
	if err != nil {
		return "", fmt.Errorf("failed to serialize external message: %w", err)
	}
	return base64.StdEncoding.EncodeToString(c.ToBOCWithFlags(false)), nil
}
