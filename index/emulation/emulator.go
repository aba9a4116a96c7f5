package emulation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/toncenter/ton-activity-go/index/activity"
	"github.com/toncenter/ton-activity-go/index/cache"
	"github.com/toncenter/ton-activity-go/index/models"
	"github.com/toncenter/ton-activity-go/index/parse"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// Backend is the part of the toncenter client the emulator uses.
type Backend interface {
	EmulateTrace(ctx context.Context, req models.EmulateRequest) (*models.EmulateTraceResponse, error)
	EstimateFee(ctx context.Context, req models.EstimateFeeRequest) (*models.EstimateFeeResult, error)
}

type Result struct {
	NetworkFee   int64                `json:"networkFee,string"`
	Received     int64                `json:"received,string"`
	RealFee      int64                `json:"realFee,string"`
	Excess       int64                `json:"excess,string"`
	TraceOutputs []*parse.TraceOutput `json:"traceOutputs"`
	Activities   []activity.Activity  `json:"activities"`
	// IsFallback marks fees estimated without emulation; only NetworkFee and
	// RealFee are set then.
	IsFallback bool `json:"isFallback"`
} // @name EmulationResult

type Emulator struct {
	backends map[models.Network]Backend
	cache    *cache.Manager
	log      *logrus.Logger
	now      func() time.Time
}

func NewEmulator(backends map[models.Network]Backend, c *cache.Manager, log *logrus.Logger) *Emulator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Emulator{backends: backends, cache: c, log: log, now: time.Now}
}

// Emulate previews a wallet body before it is signed. When the emulation
// backend fails the fee comes from estimateFee and the result is marked as
// a fallback.
func (e *Emulator) Emulate(ctx context.Context, network models.Network, w WalletState, body *cell.Builder) (*Result, error) {
	backend, ok := e.backends[network]
	if !ok {
		return nil, models.IndexError{Code: 400, Message: fmt.Sprintf("network %q is not configured", network)}
	}
	msg, err := BuildExternalMessage(w, body, nil)
	if err != nil {
		return nil, err
	}
	boc, err := SerializeExternalMessage(msg)
	if err != nil {
		return nil, err
	}
	walletAddress := w.Address.String()
	log := e.log.WithFields(logrus.Fields{
		"network": network,
		"wallet":  walletAddress,
	})

	resp, err := backend.EmulateTrace(ctx, models.EmulateRequest{
		Boc:                boc,
		IgnoreChksig:       true,
		WithActions:        true,
		IncludeAddressBook: true,
		IncludeMetadata:    true,
	})
	if err != nil {
		log.WithError(err).Warn("emulation failed, estimating fee")
		res, fallbackErr := e.estimate(ctx, backend, walletAddress, msg)
		if fallbackErr != nil {
			return nil, errors.Join(err, fallbackErr)
		}
		return res, nil
	}

	if resp.AddressBook != nil && resp.Metadata != nil {
		if err := e.cache.RememberTokens(ctx, *resp.AddressBook, *resp.Metadata); err != nil {
			log.WithError(err).Debug("failed to cache tokens")
		}
	}
	var book models.AddressBook
	if resp.AddressBook != nil {
		book = *resp.AddressBook
	}
	res, err := ParseEmulation(walletAddress, resp, e.cache.TokenLookup(ctx, book), e.now().UnixMilli())
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"real_fee": res.RealFee,
		"excess":   res.Excess,
		"outputs":  len(res.TraceOutputs),
	}).Debug("emulated")
	return res, nil
}

func (e *Emulator) estimate(ctx context.Context, backend Backend, walletAddress string, msg *tlb.ExternalMessage) (*Result, error) {
	req := models.EstimateFeeRequest{
		Address:      walletAddress,
		Body:         base64.StdEncoding.EncodeToString(msg.Body.ToBOCWithFlags(false)),
		IgnoreChksig: true,
	}
	if si := msg.StateInit; si != nil {
		if si.Code != nil {
			code := base64.StdEncoding.EncodeToString(si.Code.ToBOCWithFlags(false))
			req.InitCode = &code
		}
		if si.Data != nil {
			data := base64.StdEncoding.EncodeToString(si.Data.ToBOCWithFlags(false))
			req.InitData = &data
		}
	}
	fee, err := backend.EstimateFee(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate fee: %w", err)
	}
	total := fee.Total()
	return &Result{
		NetworkFee: total,
		RealFee:    total,
		IsFallback: true,
	}, nil
}

// ParseEmulation runs an emulation response through ParseTrace and
// aggregates the outputs.
func ParseEmulation(wallet string, resp *models.EmulateTraceResponse, tokens parse.TokenLookup, nowMs int64) (*Result, error) {
	in := parse.TraceInput{
		Root:         &resp.Trace,
		Transactions: resp.Transactions,
		Tokens:       tokens,
	}
	if resp.Actions != nil {
		in.Actions = *resp.Actions
	}
	if resp.AddressBook != nil {
		in.AddressBook = *resp.AddressBook
	}
	if resp.Metadata != nil {
		in.Metadata = *resp.Metadata
	}

	parsed, err := parse.ParseTrace(wallet, in)
	if err != nil {
		return nil, fmt.Errorf("failed to parse emulation: %w", err)
	}
	return &Result{
		NetworkFee:   parsed.TotalNetworkFee,
		Received:     parsed.TotalReceived,
		RealFee:      parsed.RealFee(),
		Excess:       parsed.Excess(),
		TraceOutputs: parsed.TraceOutputs,
		Activities:   parse.CollectActivities(parsed, wallet, nowMs),
	}, nil
}
