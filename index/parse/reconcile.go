package parse

import (
	"errors"
	"fmt"

	"github.com/toncenter/ton-activity-go/index/activity"
	"github.com/toncenter/ton-activity-go/index/models"
)

var ErrUnknownActivityKind = errors.New("unknown activity kind")

// FillTraceOutput attaches the wallet actions of an output and computes its
// real fee and excess.
func FillTraceOutput(wallet string, out *TraceOutput, actions []ParsedAction,
	views map[models.HashType][]TransactionView, book models.AddressBook) error {
	m := newWalletMatcher(wallet)

	out.WalletActions = out.WalletActions[:0]
	covered := make(map[models.HashType]struct{})
	liquidity := false
	for _, pa := range actions {
		if !out.intersects(pa.Action.TxHashes) {
			continue
		}
		owned, err := ownedByWallet(m, pa.Activities, book)
		if err != nil {
			return fmt.Errorf("action %s: %w", pa.Action.ActionId, err)
		}
		if !owned {
			continue
		}
		out.WalletActions = append(out.WalletActions, pa)
		for _, h := range pa.Action.TxHashes {
			covered[h] = struct{}{}
		}
		if isLiquidity(pa.Action.Type) {
			liquidity = true
		}
	}

	if out.Received == 0 && !liquidity {
		out.RealFee = out.NetworkFee
		out.Excess = 0
		return nil
	}

	var changeIn, changeOut int64
	for _, pa := range out.WalletActions {
		if pa.ToncoinChange == nil {
			continue
		}
		if c := *pa.ToncoinChange; c > 0 {
			changeIn += c
		} else {
			changeOut += c
		}
	}

	uncovered := make([]TransactionView, 0)
	for _, h := range out.SortedHashes() {
		if _, ok := covered[h]; ok {
			continue
		}
		uncovered = append(uncovered, views[h]...)
	}
	fromBody := FindToncoinChangeInTransactions(wallet, uncovered)

	out.RealFee = out.Sent - out.Received + (fromBody + changeIn + changeOut) + out.NetworkFee
	out.Excess = out.Received - changeIn
	return nil
}

func (o *TraceOutput) intersects(hashes []models.HashType) bool {
	for _, h := range hashes {
		if o.Hashes.Contains(h) {
			return true
		}
	}
	return false
}

func isLiquidity(actionType string) bool {
	return actionType == models.ActionDexDepositLiquidity || actionType == models.ActionDexWithdrawLiquidity
}

func ownedByWallet(m walletMatcher, list []activity.Activity, book models.AddressBook) (bool, error) {
	for _, a := range list {
		switch a := a.(type) {
		case *activity.Transaction:
			if m.is(a.FromAddress) || m.is(a.ToAddress) {
				return true, nil
			}
		case *activity.Swap:
			if m.is(book.UserFriendly(models.AccountAddress(a.FromAddress))) {
				return true, nil
			}
		default:
			return false, fmt.Errorf("%w: %T", ErrUnknownActivityKind, a)
		}
	}
	return false, nil
}
