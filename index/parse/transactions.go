package parse

import (
	"encoding/base64"
	"math/big"

	"github.com/toncenter/ton-activity-go/index/models"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// TransactionView is one wallet-relevant view of a raw transaction: one view
// per outgoing internal message, or a single incoming view when the
// transaction sent nothing.
type TransactionView struct {
	Hash        models.HashType
	MsgHash     models.HashType
	Account     models.AccountAddress
	Lt          int64
	Utime       int64
	FromAddress string
	ToAddress   string
	// Amount is negative when the value leaves Account.
	Amount     int64
	Fee        int64
	IsIncoming bool
	Success    bool
	OpCode     *models.OpcodeType
	Body       *string
}

// ParseRawTransactions builds the views of every transaction of a trace,
// keyed by transaction hash.
func ParseRawTransactions(txs map[models.HashType]*models.Transaction) map[models.HashType][]TransactionView {
	views := make(map[models.HashType][]TransactionView, len(txs))
	for hash, tx := range txs {
		if tx == nil {
			continue
		}
		views[hash] = transactionViews(hash, tx)
	}
	return views
}

func transactionViews(hash models.HashType, tx *models.Transaction) []TransactionView {
	base := TransactionView{
		Hash:    hash,
		Account: tx.Account,
		Lt:      tx.Lt,
		Utime:   int64(tx.Now),
		Success: tx.IsSuccess(),
	}

	outgoing := make([]*models.Message, 0, len(tx.OutMsgs))
	for _, msg := range tx.OutMsgs {
		// external out messages are logs
		if msg != nil && msg.Destination != nil {
			outgoing = append(outgoing, msg)
		}
	}

	if len(outgoing) > 0 {
		n := int64(len(outgoing))
		share := tx.TotalFees / n
		views := make([]TransactionView, 0, len(outgoing))
		for i, msg := range outgoing {
			v := base
			v.MsgHash = msg.MsgHash
			v.FromAddress = string(tx.Account)
			v.ToAddress = string(*msg.Destination)
			v.Amount = -messageValue(msg)
			v.Fee = share
			if i == 0 {
				v.Fee += tx.TotalFees - share*n
			}
			v.OpCode = msg.Opcode
			v.Body = messageBody(msg)
			views = append(views, v)
		}
		return views
	}

	v := base
	v.Fee = tx.TotalFees
	v.ToAddress = string(tx.Account)
	if msg := tx.InMsg; msg != nil {
		v.MsgHash = msg.MsgHash
		v.IsIncoming = true
		v.Amount = messageValue(msg)
		if msg.Source != nil {
			v.FromAddress = string(*msg.Source)
		}
		v.OpCode = msg.Opcode
		v.Body = messageBody(msg)
	}
	return []TransactionView{v}
}

func messageValue(msg *models.Message) int64 {
	if msg.Value == nil {
		return 0
	}
	return *msg.Value
}

func messageBody(msg *models.Message) *string {
	if msg.MessageContent == nil {
		return nil
	}
	return msg.MessageContent.Body
}

const (
	opDedustNativeSwap models.OpcodeType = 0xea06185d
	opPtonTonTransfer  models.OpcodeType = 0x01f3835d
	opExcess           models.OpcodeType = 0xd53276db
)

// opcodes whose body starts with op, query_id and a coins amount of Toncoin
var toncoinBodyOpcodes = map[models.OpcodeType]struct{}{
	opDedustNativeSwap: {},
	opPtonTonTransfer:  {},
}

// FindToncoinChangeInTransactions recovers a Toncoin delta from message bodies
// the action classifier does not see. The first view with a recognised
// op-code and a non-zero amount decides; the sign follows the wallet
// direction.
func FindToncoinChangeInTransactions(wallet string, views []TransactionView) int64 {
	m := newWalletMatcher(wallet)
	for _, v := range views {
		if v.OpCode == nil || v.Body == nil {
			continue
		}
		if _, ok := toncoinBodyOpcodes[*v.OpCode]; !ok {
			continue
		}
		amount, ok := bodyToncoinAmount(*v.Body)
		if !ok || amount.Sign() == 0 || !amount.IsInt64() {
			continue
		}
		switch {
		case m.is(v.ToAddress):
			return amount.Int64()
		case m.is(v.FromAddress):
			return -amount.Int64()
		}
	}
	return 0
}

func bodyToncoinAmount(body string) (*big.Int, bool) {
	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, false
	}
	c, err := cell.FromBOC(data)
	if err != nil {
		return nil, false
	}
	s := c.BeginParse()
	if _, err := s.LoadUInt(32); err != nil {
		return nil, false
	}
	if _, err := s.LoadUInt(64); err != nil {
		return nil, false
	}
	amount, err := s.LoadBigCoins()
	if err != nil {
		return nil, false
	}
	return amount, true
}
