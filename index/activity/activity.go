package activity

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/toncenter/ton-activity-go/index/models"
)

type Kind string

const (
	KindTransaction Kind = "transaction"
	KindSwap        Kind = "swap"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusPending   Status = "pending"
)

type TransactionType string

const (
	TypeTransfer            TransactionType = ""
	TypeExcess              TransactionType = "excess"
	TypeStake               TransactionType = "stake"
	TypeUnstake             TransactionType = "unstake"
	TypeUnstakeRequest      TransactionType = "unstakeRequest"
	TypeCallContract        TransactionType = "callContract"
	TypeContractDeploy      TransactionType = "contractDeploy"
	TypeBurn                TransactionType = "burn"
	TypeMint                TransactionType = "mint"
	TypeNftTransferred      TransactionType = "nftTransferred"
	TypeNftReceived         TransactionType = "nftReceived"
	TypeNftTrade            TransactionType = "nftTrade"
	TypeNftMint             TransactionType = "nftMint"
	TypeAuctionBid          TransactionType = "auctionBid"
	TypeDnsPurchase         TransactionType = "dnsPurchase"
	TypeDnsChangeAddress    TransactionType = "dnsChangeAddress"
	TypeDnsChangeSite       TransactionType = "dnsChangeSite"
	TypeDnsChangeStorage    TransactionType = "dnsChangeStorage"
	TypeDnsChangeSubdomains TransactionType = "dnsChangeSubdomains"
	TypeDnsChangeText       TransactionType = "dnsChangeText"
	TypeDnsDelete           TransactionType = "dnsDelete"
	TypeDnsRenew            TransactionType = "dnsRenew"
	TypeLiquidityDeposit    TransactionType = "liquidityDeposit"
	TypeLiquidityWithdraw   TransactionType = "liquidityWithdraw"
)

const (
	ToncoinSlug     = "toncoin"
	ToncoinDecimals = 9

	// FakeExcessID identifies the excess activity synthesized when a trace
	// has a refund but no activity to show it on.
	FakeExcessID = "fake-excess"

	BurnAddress = "UQAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAJKZ"
)

// Activity is either a *Transaction or a *Swap.
type Activity interface {
	ActivityID() string
	ActivityKind() Kind
	ActivityTimestamp() int64
	NeedsReload() bool
	Clone() Activity
	isActivity()
}

type Transaction struct {
	ID                  string          `json:"id"`
	Timestamp           int64           `json:"timestamp"`
	Type                TransactionType `json:"type,omitempty"`
	FromAddress         string          `json:"fromAddress"`
	ToAddress           string          `json:"toAddress"`
	Amount              *big.Int        `json:"amount"`
	Slug                string          `json:"slug"`
	Comment             *string         `json:"comment,omitempty"`
	IsIncoming          bool            `json:"isIncoming"`
	Fee                 int64           `json:"fee"`
	Status              Status          `json:"status"`
	NftAddress          string          `json:"nftAddress,omitempty"`
	ExternalMsgHashNorm models.HashType `json:"externalMsgHashNorm,omitempty"`
	ShouldReload        bool            `json:"shouldReload,omitempty"`
	ShouldLoadDetails   bool            `json:"shouldLoadDetails,omitempty"`
}

type Swap struct {
	ID                  string          `json:"id"`
	Timestamp           int64           `json:"timestamp"`
	FromAddress         string          `json:"fromAddress"`
	From                string          `json:"from"`
	FromAmount          string          `json:"fromAmount"`
	To                  string          `json:"to"`
	ToAmount            string          `json:"toAmount"`
	NetworkFee          string          `json:"networkFee"`
	OurFee              string          `json:"ourFee"`
	Status              Status          `json:"status"`
	Hashes              []string        `json:"hashes,omitempty"`
	ExternalMsgHashNorm models.HashType `json:"externalMsgHashNorm,omitempty"`
	ShouldReload        bool            `json:"shouldReload,omitempty"`
	ShouldLoadDetails   bool            `json:"shouldLoadDetails,omitempty"`
}

func (t *Transaction) ActivityID() string       { return t.ID }
func (t *Transaction) ActivityKind() Kind       { return KindTransaction }
func (t *Transaction) ActivityTimestamp() int64 { return t.Timestamp }
func (t *Transaction) NeedsReload() bool        { return t.ShouldReload }
func (t *Transaction) isActivity()              {}

func (t *Transaction) Clone() Activity {
	c := *t
	if t.Amount != nil {
		c.Amount = new(big.Int).Set(t.Amount)
	}
	return &c
}

func (t *Transaction) MarshalJSON() ([]byte, error) {
	type plain Transaction
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*plain
	}{KindTransaction, (*plain)(t)})
}

func (s *Swap) ActivityID() string       { return s.ID }
func (s *Swap) ActivityKind() Kind       { return KindSwap }
func (s *Swap) ActivityTimestamp() int64 { return s.Timestamp }
func (s *Swap) NeedsReload() bool        { return s.ShouldReload }
func (s *Swap) isActivity()              {}

func (s *Swap) Clone() Activity {
	c := *s
	c.Hashes = append([]string(nil), s.Hashes...)
	return &c
}

func (s *Swap) MarshalJSON() ([]byte, error) {
	type plain Swap
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*plain
	}{KindSwap, (*plain)(s)})
}

// BuildID derives an activity id from the action id. Actions producing
// several activities get a leg suffix starting from 1.
func BuildID(actionID models.HashType, leg int) string {
	if leg == 0 {
		return string(actionID)
	}
	return fmt.Sprintf("%s:%d", actionID, leg)
}

// ActionID returns the action id an activity id was derived from.
func ActionID(id string) models.HashType {
	if i := strings.LastIndexByte(id, ':'); i >= 0 {
		return models.HashType(id[:i])
	}
	return models.HashType(id)
}

// IsExcess reports whether a is a transaction of the excess type.
func IsExcess(a Activity) bool {
	t, ok := a.(*Transaction)
	return ok && t.Type == TypeExcess
}

// UnmarshalActivity decodes an activity by its kind field.
func UnmarshalActivity(data []byte) (Activity, error) {
	var head struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	var act Activity
	switch head.Kind {
	case KindTransaction:
		act = &Transaction{}
	case KindSwap:
		act = &Swap{}
	default:
		return nil, fmt.Errorf("unknown activity kind %q", head.Kind)
	}
	if err := json.Unmarshal(data, act); err != nil {
		return nil, err
	}
	return act, nil
}
