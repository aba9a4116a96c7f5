package parse

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toncenter/ton-activity-go/index/activity"
	"github.com/toncenter/ton-activity-go/index/models"
)

func parseOne(t *testing.T, action *models.Action, ctx Context) ParsedAction {
	t.Helper()
	if ctx.Wallet == "" {
		ctx.Wallet = testWallet
	}
	parsed := ParseActions([]*models.Action{action}, ctx)
	require.Len(t, parsed, 1)
	require.NotEmpty(t, parsed[0].Activities)
	return parsed[0]
}

func TestParseTonTransferDirection(t *testing.T) {
	out := tonTransferAction("out", testWallet, testOther, 1_500_000_000, "w1")
	out.Details.(*models.ActionDetailsTonTransfer).Comment = ptr("hello")

	pa := parseOne(t, out, Context{})
	tx := pa.Activities[0].(*activity.Transaction)
	assert.False(t, tx.IsIncoming)
	assert.Equal(t, big.NewInt(-1_500_000_000), tx.Amount)
	assert.Equal(t, "hello", *tx.Comment)
	assert.True(t, tx.ShouldLoadDetails)
	assert.Equal(t, int64(-1_500_000_000), *pa.ToncoinChange)

	in := tonTransferAction("in", testOther, testWallet, 7, "w1")
	details := in.Details.(*models.ActionDetailsTonTransfer)
	details.Comment = ptr("secret")
	details.Encrypted = ptr(true)

	pa = parseOne(t, in, Context{})
	tx = pa.Activities[0].(*activity.Transaction)
	assert.True(t, tx.IsIncoming)
	assert.Equal(t, big.NewInt(7), tx.Amount)
	assert.Nil(t, tx.Comment)
	assert.False(t, tx.ShouldLoadDetails)
	assert.Equal(t, int64(7), *pa.ToncoinChange)
}

func TestParsePendingAction(t *testing.T) {
	action := tonTransferAction("p", testWallet, testOther, 1, "w1")
	action.Success = nil
	action.TraceEndLt = 0

	tx := parseOne(t, action, Context{}).Activities[0].(*activity.Transaction)
	assert.Equal(t, activity.StatusPending, tx.Status)
	assert.True(t, tx.ShouldReload)
}

func TestParseSwapUsesTokenLookup(t *testing.T) {
	action := &models.Action{
		ActionId:   "swap",
		StartUtime: 10,
		TraceEndLt: 1,
		Success:    ptr(true),
		TxHashes:   hashes("w1", "d1"),
		Type:       models.ActionJettonSwap,
		Details: &models.ActionDetailsJettonSwap{
			Sender:              addr(testWallet),
			AssetIn:             addr(testUSDT),
			DexIncomingTransfer: &models.ActionDetailsJettonSwapTransfer{Amount: ptr("2500000")},
			DexOutgoingTransfer: &models.ActionDetailsJettonSwapTransfer{Amount: ptr("750000000")},
		},
	}
	lookups := 0
	tokens := func(master models.AccountAddress) (activity.Token, bool) {
		lookups++
		return activity.Token{Slug: "ton-usdt", Decimals: 6}, true
	}

	pa := parseOne(t, action, Context{Tokens: tokens})
	swap := pa.Activities[0].(*activity.Swap)
	assert.Equal(t, 1, lookups)
	assert.Equal(t, "ton-usdt", swap.From)
	assert.Equal(t, "2.5", swap.FromAmount)
	assert.Equal(t, activity.ToncoinSlug, swap.To)
	assert.Equal(t, "0.75", swap.ToAmount)
	assert.Equal(t, []string{"w1", "d1"}, swap.Hashes)
	assert.Equal(t, int64(750_000_000), *pa.ToncoinChange)
}

func TestParseNftPurchase(t *testing.T) {
	purchase := func(oldOwner, newOwner string) *models.Action {
		return &models.Action{
			ActionId: "nft",
			Success:  ptr(true),
			Type:     models.ActionNftTransfer,
			Details: &models.ActionDetailsNftTransfer{
				NftItem:    addr(testContract),
				OldOwner:   addr(oldOwner),
				NewOwner:   addr(newOwner),
				IsPurchase: ptr(true),
				Price:      ptr("5000"),
			},
		}
	}

	pa := parseOne(t, purchase(testOther, testWallet), Context{})
	tx := pa.Activities[0].(*activity.Transaction)
	assert.Equal(t, activity.TypeNftTrade, tx.Type)
	assert.False(t, tx.IsIncoming)
	assert.Equal(t, big.NewInt(-5000), tx.Amount)
	assert.Equal(t, int64(-5000), *pa.ToncoinChange)
	assert.NotEmpty(t, tx.NftAddress)

	pa = parseOne(t, purchase(testWallet, testOther), Context{})
	tx = pa.Activities[0].(*activity.Transaction)
	assert.True(t, tx.IsIncoming)
	assert.Equal(t, big.NewInt(5000), tx.Amount)
	assert.Equal(t, int64(5000), *pa.ToncoinChange)
}

func TestParseNftTransferWithoutPayment(t *testing.T) {
	action := &models.Action{
		ActionId: "nft",
		Success:  ptr(true),
		Type:     models.ActionNftTransfer,
		Details: &models.ActionDetailsNftTransfer{
			NftItem:  addr(testContract),
			OldOwner: addr(testOther),
			NewOwner: addr(testWallet),
		},
	}
	pa := parseOne(t, action, Context{})
	assert.Equal(t, activity.TypeNftReceived, pa.Activities[0].(*activity.Transaction).Type)
	assert.Nil(t, pa.ToncoinChange)
}

func TestParseChangeDnsType(t *testing.T) {
	action := &models.Action{
		ActionId: "dns",
		Success:  ptr(true),
		Type:     models.ActionChangeDns,
		Details: &models.ActionDetailsChangeDns{
			Value:  models.ActionDetailsChangeDnsValue{SumType: ptr("DNSText")},
			Source: addr(testWallet),
			Asset:  addr(testContract),
		},
	}
	tx := parseOne(t, action, Context{}).Activities[0].(*activity.Transaction)
	assert.Equal(t, activity.TypeDnsChangeText, tx.Type)
	assert.Equal(t, big.NewInt(0), tx.Amount)
}

func TestParseLiquidityDepositLegs(t *testing.T) {
	pa := parseOne(t, liquidityAction(), Context{})
	require.Len(t, pa.Activities, 2)
	assert.Equal(t, "liq:1", pa.Activities[0].ActivityID())
	assert.Equal(t, "liq:2", pa.Activities[1].ActivityID())
	assert.Equal(t, activity.ToncoinSlug, pa.Activities[0].(*activity.Transaction).Slug)
	assert.Equal(t, int64(-1_000_000_000), *pa.ToncoinChange)
}

func TestParseDropsUnsupportedActions(t *testing.T) {
	parsed := ParseActions([]*models.Action{
		nil,
		{ActionId: "x", Type: "tick_tock", Details: &models.ActionDetailsUnknown{}},
		tonTransferAction("ok", testWallet, testOther, 1, "w1"),
	}, Context{Wallet: testWallet})
	require.Len(t, parsed, 1)
	assert.Equal(t, models.HashType("ok"), parsed[0].Action.ActionId)
}

func liquidityAction() *models.Action {
	return &models.Action{
		ActionId:   "liq",
		StartUtime: 10,
		TraceEndLt: 1,
		Success:    ptr(true),
		TxHashes:   hashes("w1", "p1", "j1"),
		Type:       models.ActionDexDepositLiquidity,
		Details: &models.ActionDetailsDexDepositLiquidity{
			Amount1: ptr("1000000000"),
			Amount2: ptr("5000000"),
			Asset2:  addr(testUSDT),
			Source:  addr(testWallet),
			Pool:    addr(testPool),
		},
	}
}

func excessAction(id string, value int64, txs ...string) *models.Action {
	return &models.Action{
		ActionId:   models.HashType(id),
		StartUtime: 1730000000,
		TraceEndLt: 100,
		TxHashes:   hashes(txs...),
		Success:    ptr(true),
		Type:       models.ActionCallContract,
		Details: &models.ActionDetailsCallContract{
			OpCode:      ptr(opExcess),
			Source:      addr(testContract),
			Destination: addr(testWallet),
			Value:       ptr(formatInt(value)),
		},
	}
}

func TestParseCallContractExcess(t *testing.T) {
	pa := parseOne(t, excessAction("ex", 30_000_000, "w2"), Context{})
	tx := pa.Activities[0].(*activity.Transaction)
	assert.Equal(t, activity.TypeExcess, tx.Type)
	assert.True(t, activity.IsExcess(tx))
	assert.True(t, tx.IsIncoming)
	assert.Equal(t, big.NewInt(30_000_000), tx.Amount)
	assert.False(t, tx.ShouldLoadDetails)
	assert.Nil(t, pa.ToncoinChange)

	plain := excessAction("call", 30_000_000, "w2")
	plain.Details.(*models.ActionDetailsCallContract).OpCode = ptr(models.OpcodeType(0x0f8a7ea5))
	pa = parseOne(t, plain, Context{})
	tx = pa.Activities[0].(*activity.Transaction)
	assert.Equal(t, activity.TypeCallContract, tx.Type)
	require.NotNil(t, pa.ToncoinChange)
	assert.Equal(t, int64(30_000_000), *pa.ToncoinChange)
}
