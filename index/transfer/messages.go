package transfer

import (
	"encoding/base64"
	"fmt"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton/wallet"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// TonConnectMessage is one message of a TON Connect transaction request.
type TonConnectMessage struct {
	Address   string  `json:"address" example:"EQB3ncyBUTjZUA5EnFKR5_EnOMI9V1tTEAAPaiU71gc4TiUt"`
	Amount    string  `json:"amount" example:"1000000000"`
	Payload   *string `json:"payload" example:"te6ccgEBAQEAAgAAAA=="`
	StateInit *string `json:"stateInit" example:"te6ccgEBAQEAAgAAAA=="`
}

func decodeCell(s string) (*cell.Cell, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return cell.FromBOC(raw)
}

// ToWalletMessage converts the message the way wallets send it: gas paid
// separately, errors ignored, bounce taken from the address flags.
func (m TonConnectMessage) ToWalletMessage() (*wallet.Message, error) {
	to, err := address.ParseAddr(m.Address)
	if err != nil {
		to, err = address.ParseRawAddr(m.Address)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", m.Address, err)
		}
	}
	amount, err := tlb.FromNanoTONStr(m.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", m.Amount, err)
	}

	msg := &tlb.InternalMessage{
		IHRDisabled: true,
		Bounce:      to.IsBounceable(),
		DstAddr:     to,
		Amount:      amount,
	}
	if m.Payload != nil && *m.Payload != "" {
		if msg.Body, err = decodeCell(*m.Payload); err != nil {
			return nil, fmt.Errorf("invalid payload: %w", err)
		}
	}
	if m.StateInit != nil && *m.StateInit != "" {
		c, err := decodeCell(*m.StateInit)
		if err != nil {
			return nil, fmt.Errorf("invalid stateInit: %w", err)
		}
		var init tlb.StateInit
		if err := tlb.LoadFromCell(&init, c.BeginParse()); err != nil {
			return nil, fmt.Errorf("invalid stateInit: %w", err)
		}
		msg.StateInit = &init
	}
	return &wallet.Message{
		Mode:            wallet.PayGasSeparately + wallet.IgnoreErrors,
		InternalMessage: msg,
	}, nil
}

// WalletMessages converts a whole TON Connect request.
func WalletMessages(msgs []TonConnectMessage) ([]*wallet.Message, error) {
	if len(msgs) == 0 {
		return nil, fmt.Errorf("messages array cannot be empty")
	}
	result := make([]*wallet.Message, 0, len(msgs))
	for i, m := range msgs {
		msg, err := m.ToWalletMessage()
		if err != nil {
			return nil, fmt.Errorf("message at index %d: %w", i, err)
		}
		result = append(result, msg)
	}
	return result, nil
}
