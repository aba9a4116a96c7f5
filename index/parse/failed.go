package parse

import (
	"github.com/toncenter/ton-activity-go/index/activity"
	"github.com/toncenter/ton-activity-go/index/models"
)

// HandleFailedTrace builds the outputs of a trace whose entry transaction
// produced nothing: one failed output per transaction the wallet sent, with
// the entry fee split evenly between them.
func HandleFailedTrace(wallet string, rootTx *models.Transaction, actions []ParsedAction) []*TraceOutput {
	m := newWalletMatcher(wallet)

	type sent struct {
		action ParsedAction
		tx     *activity.Transaction
	}
	var list []sent
	for _, pa := range actions {
		for _, a := range pa.Activities {
			if t, ok := a.(*activity.Transaction); ok && m.is(t.FromAddress) {
				list = append(list, sent{action: pa, tx: t})
			}
		}
	}
	if len(list) == 0 {
		return nil
	}

	var fee int64
	if rootTx != nil {
		fee = rootTx.TotalFees / int64(len(list))
	}
	outputs := make([]*TraceOutput, 0, len(list))
	for _, s := range list {
		out := newTraceOutput()
		out.IsSuccess = false
		out.NetworkFee = fee
		out.RealFee = fee
		out.WalletActions = []ParsedAction{{
			Action:        s.action.Action,
			Activities:    []activity.Activity{s.tx},
			ToncoinChange: s.action.ToncoinChange,
		}}
		outputs = append(outputs, out)
	}
	return outputs
}
