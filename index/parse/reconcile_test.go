package parse

import (
	"encoding/base64"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toncenter/ton-activity-go/index/activity"
	"github.com/toncenter/ton-activity-go/index/models"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

func toncoinBody(op models.OpcodeType, amount int64) *string {
	boc := cell.BeginCell().
		MustStoreUInt(uint64(op), 32).
		MustStoreUInt(7, 64).
		MustStoreBigCoins(big.NewInt(amount)).
		EndCell().ToBOC()
	body := base64.StdEncoding.EncodeToString(boc)
	return &body
}

func withBody(msg *models.Message, op models.OpcodeType, amount int64) *models.Message {
	msg.Opcode = ptr(op)
	msg.MessageContent = &models.MessageContent{Body: toncoinBody(op, amount)}
	return msg
}

func TestFindToncoinChangeInTransactions(t *testing.T) {
	body := toncoinBody(opDedustNativeSwap, 500_000_000)
	op := ptr(opDedustNativeSwap)

	views := []TransactionView{
		{FromAddress: testOther, ToAddress: testContract, OpCode: ptr(models.OpcodeType(0x0f8a7ea5)), Body: body},
		{FromAddress: testWallet, ToAddress: testContract, OpCode: op, Body: body},
		{FromAddress: testContract, ToAddress: testWallet, OpCode: op, Body: body},
	}
	assert.Equal(t, int64(-500_000_000), FindToncoinChangeInTransactions(testWallet, views))
	assert.Equal(t, int64(500_000_000), FindToncoinChangeInTransactions(testWallet, views[2:]))

	zero := []TransactionView{{ToAddress: testWallet, OpCode: op, Body: toncoinBody(opDedustNativeSwap, 0)}}
	assert.Zero(t, FindToncoinChangeInTransactions(testWallet, zero))

	broken := []TransactionView{{ToAddress: testWallet, OpCode: op, Body: ptr("not a boc")}}
	assert.Zero(t, FindToncoinChangeInTransactions(testWallet, broken))
}

func TestFillTraceOutputScansUncoveredBodies(t *testing.T) {
	txs := txMap(
		testTx("w1", testWallet, 3000, externalMsg("ext", testWallet),
			internalMsg("m1", testWallet, testContract, 300_000_000)),
		testTx("c1", testContract, 1000, internalMsg("m1", testWallet, testContract, 300_000_000),
			withBody(internalMsg("m2", testContract, testWallet, 250_000_000), opPtonTonTransfer, 200_000_000)),
		testTx("w2", testWallet, 0,
			withBody(internalMsg("m2", testContract, testWallet, 250_000_000), opPtonTonTransfer, 200_000_000)),
	)
	root := node("w1", "ext", node("c1", "m1", node("w2", "m2")))
	jetton := &models.Action{
		ActionId:   "jt",
		Success:    ptr(true),
		TraceEndLt: 1,
		TxHashes:   hashes("w1"),
		Type:       models.ActionJettonTransfer,
		Details: &models.ActionDetailsJettonTransfer{
			Asset:    addr(testUSDT),
			Sender:   addr(testWallet),
			Receiver: addr(testOther),
			Amount:   ptr("1000000"),
		},
	}

	parsed, err := ParseTrace(testWallet, TraceInput{Root: root, Transactions: txs, Actions: []*models.Action{jetton}})
	require.NoError(t, err)
	require.Len(t, parsed.TraceOutputs, 1)

	out := parsed.TraceOutputs[0]
	assert.Equal(t, int64(300_000_000), out.Sent)
	assert.Equal(t, int64(250_000_000), out.Received)
	assert.Equal(t, int64(250_003_000), out.RealFee)
	assert.Equal(t, int64(250_000_000), out.Excess)
}

func TestFixLiquidityActions(t *testing.T) {
	txs := txMap(
		testTx("w1", testWallet, 2000, externalMsg("ext", testWallet),
			internalMsg("m1", testWallet, testPool, 1_000_000_000),
			internalMsg("m2", testWallet, testContract, 50_000_000)),
		testTx("p1", testPool, 100, internalMsg("m1", testWallet, testPool, 1_000_000_000)),
		testTx("j1", testContract, 100, internalMsg("m2", testWallet, testContract, 50_000_000)),
	)
	root := node("w1", "ext", node("p1", "m1"), node("j1", "m2"))
	views := ParseRawTransactions(txs)
	outputs := SplitTraceToOutputs(testWallet, root, views)
	require.Len(t, outputs, 2)

	original := ParseActions([]*models.Action{liquidityAction()}, Context{Wallet: testWallet})
	fixed := FixLiquidityActions(original, outputs)
	require.Len(t, fixed, 2)
	assert.Equal(t, hashes("w1", "p1"), fixed[0].Action.TxHashes)
	assert.Equal(t, hashes("j1"), fixed[1].Action.TxHashes)
	assert.Equal(t, "liq:1", fixed[0].Activities[0].ActivityID())
	assert.Equal(t, "liq:2", fixed[1].Activities[0].ActivityID())
	assert.Equal(t, int64(-1_000_000_000), *fixed[0].ToncoinChange)
	assert.Equal(t, int64(0), *fixed[1].ToncoinChange)
	assert.Len(t, original[0].Action.TxHashes, 3)

	assert.Len(t, FixLiquidityActions(original, outputs[:1]), 1)

	parsed, err := ParseTrace(testWallet, TraceInput{Root: root, Transactions: txs, Actions: []*models.Action{liquidityAction()}})
	require.NoError(t, err)
	require.Len(t, parsed.TraceOutputs, 2)
	assert.Equal(t, int64(1000), parsed.TraceOutputs[0].RealFee)
	assert.Equal(t, int64(50_001_000), parsed.TraceOutputs[1].RealFee)
	assert.Zero(t, parsed.TraceOutputs[1].Excess)

	assert.Same(t, parsed.TraceOutputs[0], parsed.OutputOf("liq:1"))
	assert.Same(t, parsed.TraceOutputs[1], parsed.OutputOf("liq:2"))
	assert.Equal(t, int64(50_001_000), parsed.OutputOf("liq:2").RealFee)
	assert.Nil(t, parsed.OutputOf("other:1"))
}

type bogusActivity struct {
	*activity.Transaction
}

func TestFillTraceOutputRejectsUnknownKind(t *testing.T) {
	out := newTraceOutput()
	out.Hashes.Add("w1")
	out.Received = 1
	actions := []ParsedAction{{
		Action:     &models.Action{ActionId: "a", TxHashes: hashes("w1")},
		Activities: []activity.Activity{bogusActivity{&activity.Transaction{}}},
	}}
	err := FillTraceOutput(testWallet, out, actions, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownActivityKind)
}

func TestFillTraceOutputSkipsForeignActions(t *testing.T) {
	out := newTraceOutput()
	out.Hashes.Add("w1")
	out.NetworkFee = 10
	actions := ParseActions([]*models.Action{
		tonTransferAction("foreign", testOther, testContract, 5, "w1"),
		tonTransferAction("elsewhere", testWallet, testContract, 5, "x1"),
		tonTransferAction("ours", testWallet, testContract, 5, "w1"),
	}, Context{Wallet: testWallet})

	require.NoError(t, FillTraceOutput(testWallet, out, actions, nil, nil))
	require.Len(t, out.WalletActions, 1)
	assert.Equal(t, models.HashType("ours"), out.WalletActions[0].Action.ActionId)
	assert.Equal(t, int64(10), out.RealFee)
}
