package parse

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/toncenter/ton-activity-go/index/activity"
	"github.com/toncenter/ton-activity-go/index/models"
)

var ErrEmptyTrace = errors.New("trace has no root")

// TraceInput is what ParseTrace needs from a confirmed trace or an emulation.
type TraceInput struct {
	Root         *models.TraceNode
	Transactions map[models.HashType]*models.Transaction
	Actions      []*models.Action
	AddressBook  models.AddressBook
	Metadata     models.Metadata
	Tokens       TokenLookup
}

type ParsedTrace struct {
	Actions         []ParsedAction
	TraceDetail     *models.TraceNode
	AddressBook     models.AddressBook
	TraceOutputs    []*TraceOutput
	TotalSent       int64
	TotalReceived   int64
	TotalNetworkFee int64
}

// TraceInputFromTrace adapts a toncenter trace.
func TraceInputFromTrace(trace *models.Trace, book models.AddressBook, meta models.Metadata, tokens TokenLookup) TraceInput {
	in := TraceInput{
		Root:         trace.Trace,
		Transactions: trace.Transactions,
		AddressBook:  book,
		Metadata:     meta,
		Tokens:       tokens,
	}
	if trace.Actions != nil {
		in.Actions = *trace.Actions
	}
	return in
}

// ParseTrace splits a trace into wallet outputs and reconciles the fee of
// each. Confirmed traces and emulations go through this same function.
func ParseTrace(wallet string, in TraceInput) (*ParsedTrace, error) {
	if in.Root == nil {
		return nil, ErrEmptyTrace
	}
	views := ParseRawTransactions(in.Transactions)
	actions := ParseActions(in.Actions, Context{
		Wallet:      wallet,
		AddressBook: in.AddressBook,
		Metadata:    in.Metadata,
		Tokens:      in.Tokens,
	})

	result := &ParsedTrace{
		TraceDetail: in.Root,
		AddressBook: in.AddressBook,
	}

	if len(in.Root.Children) == 0 {
		result.Actions = actions
		result.TraceOutputs = HandleFailedTrace(wallet, in.Transactions[in.Root.TransactionHash], actions)
	} else {
		outputs := SplitTraceToOutputs(wallet, in.Root, views)
		actions = FixLiquidityActions(actions, outputs)
		for i, out := range outputs {
			if err := FillTraceOutput(wallet, out, actions, views, in.AddressBook); err != nil {
				return nil, fmt.Errorf("failed to fill output %d: %w", i, err)
			}
		}
		result.Actions = actions
		result.TraceOutputs = outputs
	}

	for _, out := range result.TraceOutputs {
		result.TotalSent += out.Sent
		result.TotalReceived += out.Received
		result.TotalNetworkFee += out.NetworkFee
	}
	return result, nil
}

// OutputOf returns the output holding the activity. Split liquidity legs
// share one action id, so the activity id decides first and the action id is
// only a fallback.
func (t *ParsedTrace) OutputOf(activityID string) *TraceOutput {
	for _, out := range t.TraceOutputs {
		for _, pa := range out.WalletActions {
			for _, a := range pa.Activities {
				if a.ActivityID() == activityID {
					return out
				}
			}
		}
	}
	actionID := activity.ActionID(activityID)
	for _, out := range t.TraceOutputs {
		for _, pa := range out.WalletActions {
			if pa.Action.ActionId == actionID {
				return out
			}
		}
	}
	return nil
}

// RealFee sums the real fee of every output.
func (t *ParsedTrace) RealFee() int64 {
	var fee int64
	for _, out := range t.TraceOutputs {
		fee += out.RealFee
	}
	return fee
}

// Excess sums the refund of every output.
func (t *ParsedTrace) Excess() int64 {
	var excess int64
	for _, out := range t.TraceOutputs {
		excess += out.Excess
	}
	return excess
}

// CollectActivities lists the activities of every output once, then merges
// the total excess into a single excess activity.
func CollectActivities(parsed *ParsedTrace, wallet string, nowMs int64) []activity.Activity {
	seen := make(map[string]struct{})
	var list []activity.Activity
	for _, out := range parsed.TraceOutputs {
		for _, pa := range out.WalletActions {
			for _, a := range pa.Activities {
				if _, ok := seen[a.ActivityID()]; ok {
					continue
				}
				seen[a.ActivityID()] = struct{}{}
				list = append(list, a)
			}
		}
	}
	return MergeExcess(list, parsed.Excess(), wallet, nowMs)
}

// MergeExcess puts the excess amount on the existing excess activity, or
// appends a synthetic one. The input list is not modified.
func MergeExcess(list []activity.Activity, excess int64, wallet string, nowMs int64) []activity.Activity {
	result := append([]activity.Activity(nil), list...)
	if excess == 0 {
		return result
	}
	for i, a := range result {
		if !activity.IsExcess(a) {
			continue
		}
		c := a.Clone().(*activity.Transaction)
		c.Amount = big.NewInt(excess)
		result[i] = c
		return result
	}

	timestamp := nowMs
	if len(result) > 0 {
		timestamp = result[len(result)-1].ActivityTimestamp()
	}
	return append(result, &activity.Transaction{
		ID:          activity.FakeExcessID,
		Timestamp:   timestamp,
		Type:        activity.TypeExcess,
		FromAddress: activity.BurnAddress,
		ToAddress:   wallet,
		Amount:      big.NewInt(excess),
		Slug:        activity.ToncoinSlug,
		IsIncoming:  true,
		Status:      activity.StatusCompleted,
	})
}
