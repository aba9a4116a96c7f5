package parse

import (
	"encoding/json"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/toncenter/ton-activity-go/index/models"
)

// TraceOutput is the part of a trace caused by one top-level wallet message.
type TraceOutput struct {
	Hashes        mapset.Set[models.HashType]
	Sent          int64
	Received      int64
	NetworkFee    int64
	IsSuccess     bool
	RealFee       int64
	Excess        int64
	WalletActions []ParsedAction
}

func newTraceOutput() *TraceOutput {
	return &TraceOutput{
		Hashes:    mapset.NewThreadUnsafeSet[models.HashType](),
		IsSuccess: true,
	}
}

// SortedHashes returns the output hashes in lexical order.
func (o *TraceOutput) SortedHashes() []models.HashType {
	hashes := o.Hashes.ToSlice()
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	return hashes
}

func (o *TraceOutput) MarshalJSON() ([]byte, error) {
	type jsonAction struct {
		ActionId      models.HashType `json:"action_id"`
		Type          string          `json:"type"`
		ToncoinChange *int64          `json:"toncoin_change,omitempty"`
		Activities    interface{}     `json:"activities"`
	}
	actions := make([]jsonAction, 0, len(o.WalletActions))
	for _, pa := range o.WalletActions {
		actions = append(actions, jsonAction{
			ActionId:      pa.Action.ActionId,
			Type:          pa.Action.Type,
			ToncoinChange: pa.ToncoinChange,
			Activities:    pa.Activities,
		})
	}
	return json.Marshal(struct {
		Hashes        []models.HashType `json:"hashes"`
		Sent          int64             `json:"sent,string"`
		Received      int64             `json:"received,string"`
		NetworkFee    int64             `json:"network_fee,string"`
		IsSuccess     bool              `json:"is_success"`
		RealFee       int64             `json:"real_fee,string"`
		Excess        int64             `json:"excess,string"`
		WalletActions []jsonAction      `json:"wallet_actions"`
	}{o.SortedHashes(), o.Sent, o.Received, o.NetworkFee, o.IsSuccess, o.RealFee, o.Excess, actions})
}

type viewKey struct {
	hash models.HashType
	msg  models.HashType
}

type splitter struct {
	wallet  walletMatcher
	views   map[models.HashType][]TransactionView
	found   bool
	outputs map[int]*TraceOutput
	claimed map[models.HashType]struct{}
	seen    map[viewKey]struct{}
}

// SplitTraceToOutputs partitions a trace into one output per top-level
// message sent by the wallet. Nodes before the first wallet transaction (a
// gasless relayer, for instance) are skipped but their children are walked.
func SplitTraceToOutputs(wallet string, root *models.TraceNode, views map[models.HashType][]TransactionView) []*TraceOutput {
	s := &splitter{
		wallet:  newWalletMatcher(wallet),
		views:   views,
		outputs: make(map[int]*TraceOutput),
		claimed: make(map[models.HashType]struct{}),
		seen:    make(map[viewKey]struct{}),
	}
	s.walk(root, -1)

	indexes := make([]int, 0, len(s.outputs))
	for idx := range s.outputs {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	result := make([]*TraceOutput, 0, len(indexes))
	for _, idx := range indexes {
		result = append(result, s.outputs[idx])
	}
	return result
}

func (s *splitter) walk(node *models.TraceNode, index int) {
	if node == nil {
		return
	}
	txs := s.views[node.TransactionHash]

	if !s.found {
		if !s.sentByWallet(txs) {
			for _, child := range node.Children {
				s.walk(child, -1)
			}
			return
		}
		s.found = true
	}

	for i, view := range txs {
		idx := index
		if idx < 0 {
			idx = i
		}
		s.add(idx, view)
		for _, child := range node.Children {
			if child != nil && child.InMsgHash == view.MsgHash {
				s.walk(child, idx)
			}
		}
	}
}

func (s *splitter) sentByWallet(txs []TransactionView) bool {
	for _, v := range txs {
		if !v.IsIncoming && s.wallet.is(v.FromAddress) {
			return true
		}
	}
	return false
}

func (s *splitter) add(idx int, view TransactionView) {
	out, ok := s.outputs[idx]
	if !ok {
		out = newTraceOutput()
		s.outputs[idx] = out
	}
	if _, ok := s.claimed[view.Hash]; !ok {
		s.claimed[view.Hash] = struct{}{}
		out.Hashes.Add(view.Hash)
	}

	key := viewKey{hash: view.Hash, msg: view.MsgHash}
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}

	switch {
	case !view.IsIncoming && s.wallet.is(view.FromAddress):
		out.Sent += -view.Amount
		out.NetworkFee = view.Fee
		if !view.Success {
			out.IsSuccess = false
		}
	case view.IsIncoming && s.wallet.is(view.ToAddress):
		out.Received += view.Amount
	}
}
