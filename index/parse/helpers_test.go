package parse

import (
	"encoding/json"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/toncenter/ton-activity-go/index/models"
)

const (
	testWallet   = "0:5F1CB4B7A6D8A0E1A2E9A6D0C6A2F3B1C5D4E3F2A1B0C9D8E7F6A5B4C3D2E1F0"
	testRelayer  = "0:7777777777777777777777777777777777777777777777777777777777777777"
	testContract = "0:8888888888888888888888888888888888888888888888888888888888888888"
	testOther    = "0:9999999999999999999999999999999999999999999999999999999999999999"
	testPool     = "0:AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	testUSDT     = "0:B113A994B5024A16719F69139328EB759596C38A25F59028B146FECDC3621DFE"
)

func ptr[T any](v T) *T { return &v }

func addr(s string) *models.AccountAddress {
	a := models.AccountAddress(s)
	return &a
}

func internalMsg(hash, src, dst string, value int64) *models.Message {
	return &models.Message{
		MsgHash:     models.HashType(hash),
		Source:      addr(src),
		Destination: addr(dst),
		Value:       ptr(value),
	}
}

func externalMsg(hash, dst string) *models.Message {
	return &models.Message{MsgHash: models.HashType(hash), Destination: addr(dst)}
}

func testTx(hash, account string, fees int64, in *models.Message, outs ...*models.Message) *models.Transaction {
	return &models.Transaction{
		Account:   models.AccountAddress(account),
		Hash:      models.HashType(hash),
		Now:       1730000000,
		TotalFees: fees,
		InMsg:     in,
		OutMsgs:   outs,
	}
}

func node(tx, inMsg string, children ...*models.TraceNode) *models.TraceNode {
	if children == nil {
		children = []*models.TraceNode{}
	}
	return &models.TraceNode{
		TransactionHash: models.HashType(tx),
		InMsgHash:       models.HashType(inMsg),
		Children:        children,
	}
}

func txMap(txs ...*models.Transaction) map[models.HashType]*models.Transaction {
	m := make(map[models.HashType]*models.Transaction, len(txs))
	for _, tx := range txs {
		m[tx.Hash] = tx
	}
	return m
}

func hashes(list ...string) []models.HashType {
	res := make([]models.HashType, 0, len(list))
	for _, h := range list {
		res = append(res, models.HashType(h))
	}
	return res
}

func tonTransferAction(id, from, to string, value int64, txs ...string) *models.Action {
	return &models.Action{
		ActionId:   models.HashType(id),
		StartUtime: 1730000000,
		TraceEndLt: 100,
		TxHashes:   hashes(txs...),
		Success:    ptr(true),
		Type:       models.ActionTonTransfer,
		Details: &models.ActionDetailsTonTransfer{
			Source:      addr(from),
			Destination: addr(to),
			Value:       ptr(formatInt(value)),
		},
	}
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func loadTraces(t *testing.T, name string) models.TracesResponse {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	var resp models.TracesResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	require.NotEmpty(t, resp.Traces)
	return resp
}
