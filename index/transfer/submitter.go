package transfer

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/toncenter/ton-activity-go/index/cache"
	"github.com/toncenter/ton-activity-go/index/emulation"
	"github.com/toncenter/ton-activity-go/index/models"
	"github.com/toncenter/ton-activity-go/index/retry"
	"github.com/toncenter/ton-activity-go/index/services"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/ton/wallet"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

const DefaultConfirmTimeout = time.Minute

var errNotConfirmed = errors.New("seqno has not advanced yet")

// Backend is the part of the toncenter client transfers go through.
type Backend interface {
	GetWalletInformation(ctx context.Context, address string) (*models.WalletInformation, error)
	SendBoc(ctx context.Context, boc string) (*models.SendMessageResult, error)
}

// Previewer emulates an unsigned body.
type Previewer interface {
	Emulate(ctx context.Context, network models.Network, w emulation.WalletState, body *cell.Builder) (*emulation.Result, error)
}

type TransferRequest struct {
	Network     models.Network
	Address     *address.Address
	PublicKey   ed25519.PublicKey
	Version     wallet.Version
	SubwalletId uint32
	Messages    []*wallet.Message
	Signer      Signer
	// Preview emulates the body before signing.
	Preview bool
	TTL     time.Duration
}

type TransferResult struct {
	Seqno           uint32            `json:"seqno"`
	Boc             string            `json:"boc"`
	MessageHash     models.HashType   `json:"message_hash,omitempty"`
	MessageHashNorm models.HashType   `json:"message_hash_norm,omitempty"`
	Preview         *emulation.Result `json:"preview,omitempty"`
} // @name TransferResult

type Submitter struct {
	backends    map[models.Network]Backend
	coordinator *Coordinator
	previewer   Previewer
	cache       *cache.Manager
	log         *logrus.Logger
	retryOpts   []retry.Option
	now         func() time.Time

	ConfirmTimeout time.Duration
}

func NewSubmitter(backends map[models.Network]Backend, coordinator *Coordinator, previewer Previewer,
	c *cache.Manager, log *logrus.Logger, opts ...retry.Option) *Submitter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if coordinator == nil {
		coordinator = NewCoordinator(log)
	}
	return &Submitter{
		backends:       backends,
		coordinator:    coordinator,
		previewer:      previewer,
		cache:          c,
		log:            log,
		retryOpts:      opts,
		now:            time.Now,
		ConfirmTimeout: DefaultConfirmTimeout,
	}
}

func (s *Submitter) backend(network models.Network) (Backend, error) {
	if b, ok := s.backends[network]; ok && b != nil {
		return b, nil
	}
	return nil, models.IndexError{Code: 400, Message: fmt.Sprintf("network %q is not configured", network)}
}

func walletSeqno(info *models.WalletInformation) uint32 {
	if info == nil || info.Seqno == nil {
		return 0
	}
	return uint32(*info.Seqno)
}

func (s *Submitter) walletInitialized(ctx context.Context, network models.Network, addr string,
	info *models.WalletInformation) bool {
	ok, err := s.cache.WalletInitialized(ctx, network, addr, func(ctx context.Context) (bool, error) {
		return info.Status == "active", nil
	})
	if err != nil {
		s.log.WithError(err).Debug("wallet state cache unavailable")
		return info.Status == "active"
	}
	return ok
}

// prepared is a wallet body ready to be signed.
type prepared struct {
	wallet emulation.WalletState
	seqno  uint32
	body   *cell.Builder
}

func (s *Submitter) prepare(ctx context.Context, backend Backend, req TransferRequest) (*prepared, error) {
	if req.Address == nil {
		return nil, errors.New("wallet address is required")
	}
	addr := req.Address.String()
	info, err := backend.GetWalletInformation(ctx, addr)
	if err != nil {
		return nil, Errorf(NetworkError, "failed to read wallet seqno: %s", err.Error())
	}
	ttl := req.TTL
	if ttl <= 0 {
		ttl = DefaultMessageTTL
	}
	seqno := walletSeqno(info)
	body, err := BuildWalletBody(BodyParams{
		Version:     req.Version,
		SubwalletId: req.SubwalletId,
		Seqno:       seqno,
		ValidUntil:  s.now().Add(ttl),
		Messages:    req.Messages,
	})
	if err != nil {
		return nil, err
	}
	return &prepared{
		wallet: emulation.WalletState{
			Address:     req.Address,
			PublicKey:   req.PublicKey,
			Version:     req.Version,
			SubwalletId: req.SubwalletId,
			Initialized: s.walletInitialized(ctx, req.Network, addr, info),
		},
		seqno: seqno,
		body:  body,
	}, nil
}

// PreviewTransfer emulates a transfer with the current seqno without
// signing it.
func (s *Submitter) PreviewTransfer(ctx context.Context, req TransferRequest) (*emulation.Result, error) {
	backend, err := s.backend(req.Network)
	if err != nil {
		return nil, err
	}
	if s.previewer == nil {
		return nil, errors.New("emulation is not configured")
	}
	p, err := s.prepare(ctx, backend, req)
	if err != nil {
		return nil, err
	}
	return s.previewer.Emulate(ctx, req.Network, p.wallet, p.body)
}

// Submit signs and broadcasts a transfer once, then keeps resending it in
// the background until the wallet seqno advances. The wallet stays locked
// for other transfers until that happens.
func (s *Submitter) Submit(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	backend, err := s.backend(req.Network)
	if err != nil {
		return nil, err
	}
	if req.Address == nil {
		return nil, errors.New("wallet address is required")
	}
	if req.Signer == nil {
		return nil, errors.New("signer is required")
	}
	addr := req.Address.String()
	log := s.log.WithFields(logrus.Fields{
		"network": req.Network,
		"wallet":  addr,
	})

	var result *TransferResult
	err = s.coordinator.WithoutTransferConcurrency(ctx, req.Network, addr, func(ctx context.Context, finalize FinalizeFunc) error {
		p, err := s.prepare(ctx, backend, req)
		if err != nil {
			return err
		}
		seqno, w, body := p.seqno, p.wallet, p.body

		res := &TransferResult{Seqno: seqno}
		if req.Preview && s.previewer != nil {
			preview, err := s.previewer.Emulate(ctx, req.Network, w, body)
			if err != nil {
				log.WithError(err).Warn("transfer preview failed")
			} else {
				res.Preview = preview
			}
		}

		signature, err := req.Signer.Sign(ctx, body.EndCell().Hash())
		if err != nil {
			return fmt.Errorf("failed to sign transfer: %w", err)
		}
		msg, err := emulation.BuildExternalMessage(w, body, signature)
		if err != nil {
			return err
		}
		boc, err := emulation.SerializeExternalMessage(msg)
		if err != nil {
			return err
		}
		res.Boc = boc

		if err := s.broadcast(ctx, backend, boc, res); err != nil {
			log.WithError(err).Warn("broadcast failed")
			return err
		}
		result = res
		log.WithFields(logrus.Fields{"seqno": seqno, "msg_hash": res.MessageHash}).Info("transfer broadcast")

		finalize(func(ctx context.Context) {
			if err := s.RetrySendBoc(ctx, req.Network, addr, boc, seqno); err != nil {
				log.WithError(err).WithField("seqno", seqno).Warn("transfer not confirmed")
			}
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Broadcast sends a BOC signed elsewhere for the current seqno of the
// wallet, then confirms it in the background like Submit does.
func (s *Submitter) Broadcast(ctx context.Context, network models.Network, addr string, boc string) (*TransferResult, error) {
	backend, err := s.backend(network)
	if err != nil {
		return nil, err
	}
	log := s.log.WithFields(logrus.Fields{
		"network": network,
		"wallet":  addr,
	})

	var result *TransferResult
	err = s.coordinator.WithoutTransferConcurrency(ctx, network, addr, func(ctx context.Context, finalize FinalizeFunc) error {
		info, err := backend.GetWalletInformation(ctx, addr)
		if err != nil {
			return Errorf(NetworkError, "failed to read wallet seqno: %s", err.Error())
		}
		res := &TransferResult{Seqno: walletSeqno(info), Boc: boc}
		if err := s.broadcast(ctx, backend, boc, res); err != nil {
			log.WithError(err).Warn("broadcast failed")
			return err
		}
		result = res
		finalize(func(ctx context.Context) {
			if err := s.RetrySendBoc(ctx, network, addr, boc, res.Seqno); err != nil {
				log.WithError(err).WithField("seqno", res.Seqno).Warn("message not confirmed")
			}
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// broadcast sends boc once. A duplicate is not an error.
func (s *Submitter) broadcast(ctx context.Context, backend Backend, boc string, res *TransferResult) error {
	sent, err := backend.SendBoc(ctx, boc)
	if err != nil && CheckError(err) != TransactionExists {
		return wrapError(err)
	}
	if sent != nil {
		res.MessageHash = sent.MessageHash
		if sent.MessageHashNorm != nil {
			res.MessageHashNorm = *sent.MessageHashNorm
		}
	}
	return nil
}

// RetrySendBoc resends boc every second until the wallet seqno moves past
// seqno, a fatal broadcast error comes back or the confirm timeout passes.
func (s *Submitter) RetrySendBoc(ctx context.Context, network models.Network, addr string, boc string, seqno uint32) error {
	backend, err := s.backend(network)
	if err != nil {
		return err
	}
	timeout := s.ConfirmTimeout
	if timeout <= 0 {
		timeout = DefaultConfirmTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	log := s.log.WithFields(logrus.Fields{
		"network": network,
		"wallet":  addr,
		"seqno":   seqno,
	})

	opts := append([]retry.Option{retry.PauseFirst()}, s.retryOpts...)
	_, err = retry.Do(ctx, retry.SendBoc, func(ctx context.Context, attempt int) (struct{}, error) {
		info, err := backend.GetWalletInformation(ctx, addr)
		if err == nil && walletSeqno(info) > seqno {
			return struct{}{}, nil
		}
		if err != nil {
			log.WithError(err).Debug("failed to poll wallet seqno")
		}

		if _, err := backend.SendBoc(ctx, boc); err != nil {
			status := CheckError(err)
			if status.Fatal() {
				return struct{}{}, backoff.Permanent(&Error{Status: status, Message: err.Error()})
			}
			log.WithError(err).WithField("attempt", attempt).Debug("resend failed")
		}
		return struct{}{}, errNotConfirmed
	}, opts...)

	switch {
	case err == nil:
		log.Debug("transfer confirmed")
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return Errorf(TransactionTimedOut, "seqno %d was not consumed in %s", seqno, timeout)
	}
	return wrapError(err)
}

var _ Backend = (*services.Client)(nil)
var _ Previewer = (*emulation.Emulator)(nil)
