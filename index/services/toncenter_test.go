package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toncenter/ton-activity-go/index/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewClient(RequestSettings{
		Endpoint:     srv.URL,
		ApiKey:       "secret",
		Timeout:      5 * time.Second,
		DefaultLimit: 10,
		MaxLimit:     100,
	}, log)
}

func TestFetchTraces(t *testing.T) {
	fixture, err := os.ReadFile("../parse/testdata/dedust_swap.json")
	require.NoError(t, err)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/traces", r.URL.Path)
		assert.Equal(t, "ext-dedust-norm", r.URL.Query().Get("msg_hash"))
		assert.Equal(t, "true", r.URL.Query().Get("include_actions"))
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		_, _ = w.Write(fixture)
	})

	res, err := client.FetchTraces(context.Background(), "ext-dedust-norm")
	require.NoError(t, err)
	require.Len(t, res.Traces, 1)
	trace := res.Traces[0]
	require.NotNil(t, trace.Actions)
	require.Len(t, *trace.Actions, 1)
	assert.IsType(t, &models.ActionDetailsJettonSwap{}, (*trace.Actions)[0].Details)
	assert.Len(t, trace.Transactions, 7)
	assert.Equal(t, int64(2803209), trace.Transactions["tx-a"].TotalFees)
}

func TestFetchActionsParams(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/v3/actions", r.URL.Path)
		assert.Equal(t, "wallet", q.Get("account"))
		assert.Equal(t, "100", q.Get("limit"))
		assert.Equal(t, "desc", q.Get("sort"))
		assert.Equal(t, "1700000000", q.Get("end_utime"))
		assert.Empty(t, q.Get("start_utime"))
		_, _ = w.Write([]byte(`{"actions":[],"address_book":{},"metadata":{}}`))
	})

	end := int64(1700000000)
	res, err := client.FetchActions(context.Background(), ActionsRequest{Account: "wallet", EndUtime: &end, Limit: 500})
	require.NoError(t, err)
	assert.Empty(t, res.Actions)
}

func TestFetchActionsByIds(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"a", "b"}, r.URL.Query()["action_id"])
		_, _ = w.Write([]byte(`{"actions":[{"action_id":"a","type":"ton_transfer","success":true,"trace_end_lt":"5",
			"details":{"source":"0:11","destination":"0:22","value":"10"}}]}`))
	})

	res, err := client.FetchActionsByIds(context.Background(), []models.HashType{"a", "b"})
	require.NoError(t, err)
	require.Len(t, res.Actions, 1)
	details, ok := res.Actions[0].Details.(*models.ActionDetailsTonTransfer)
	require.True(t, ok)
	assert.Equal(t, "10", *details.Value)
	assert.Equal(t, int64(5), res.Actions[0].TraceEndLt)
}

func TestPostEndpoints(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/api/v3/message":
			assert.JSONEq(t, `{"boc":"te6"}`, string(body))
			_, _ = w.Write([]byte(`{"message_hash":"h","message_hash_norm":"hn"}`))
		case "/api/v3/estimateFee":
			var req models.EstimateFeeRequest
			require.NoError(t, json.Unmarshal(body, &req))
			assert.True(t, req.IgnoreChksig)
			_, _ = w.Write([]byte(`{"source_fees":{"in_fwd_fee":1,"storage_fee":2,"gas_fee":3,"fwd_fee":4}}`))
		case "/api/emulate/v1/emulateTrace":
			var req models.EmulateRequest
			require.NoError(t, json.Unmarshal(body, &req))
			assert.True(t, req.WithActions)
			_, _ = w.Write([]byte(`{"mc_block_seqno":7,"trace":{"tx_hash":"t","in_msg_hash":"m","children":[]},"transactions":{},"rand_seed":"x"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	sent, err := client.SendBoc(ctx, "te6")
	require.NoError(t, err)
	assert.Equal(t, models.HashType("h"), sent.MessageHash)
	assert.Equal(t, models.HashType("hn"), *sent.MessageHashNorm)

	fee, err := client.EstimateFee(ctx, models.EstimateFeeRequest{Address: "a", Body: "b", IgnoreChksig: true})
	require.NoError(t, err)
	assert.Equal(t, int64(10), fee.Total())

	emulated, err := client.EmulateTrace(ctx, models.EmulateRequest{Boc: "b", WithActions: true})
	require.NoError(t, err)
	assert.Equal(t, uint32(7), emulated.McBlockSeqno)
	assert.Equal(t, models.HashType("t"), emulated.Trace.TransactionHash)
}

func TestErrorResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"duplicate message"}`))
	})

	_, err := client.SendBoc(context.Background(), "boc")
	var indexErr models.IndexError
	require.True(t, errors.As(err, &indexErr))
	assert.Equal(t, http.StatusConflict, indexErr.Code)
	assert.Equal(t, "duplicate message", indexErr.Message)
}

func TestCancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be sent")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetWalletInformation(ctx, "wallet")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClients(t *testing.T) {
	clients := Clients{models.Mainnet: NewClient(RequestSettings{}, nil)}
	_, err := clients.Get(models.Mainnet)
	assert.NoError(t, err)
	_, err = clients.Get(models.Testnet)
	assert.Error(t, err)
}

func TestLimit(t *testing.T) {
	s := RequestSettings{DefaultLimit: 20, MaxLimit: 50}
	assert.Equal(t, 20, s.Limit(0))
	assert.Equal(t, 50, s.Limit(80))
	assert.Equal(t, 7, s.Limit(7))
}
