package parse

import (
	"github.com/toncenter/ton-activity-go/index/activity"
	"github.com/toncenter/ton-activity-go/index/models"
)

// FixLiquidityActions splits every two-leg liquidity deposit into one action
// per leg, so that each leg lands on its own trace output. The first leg keeps
// the action hashes found in outputs[0], the last one takes the hashes of
// outputs[1].
func FixLiquidityActions(actions []ParsedAction, outputs []*TraceOutput) []ParsedAction {
	result := make([]ParsedAction, 0, len(actions))
	for _, pa := range actions {
		if pa.Action.Type != models.ActionDexDepositLiquidity || len(pa.Activities) < 2 || len(outputs) < 2 {
			result = append(result, pa)
			continue
		}
		legs := [2]activity.Activity{pa.Activities[0], pa.Activities[len(pa.Activities)-1]}
		for i, leg := range legs {
			action := *pa.Action
			if i == 0 {
				action.TxHashes = intersectHashes(pa.Action.TxHashes, outputs[0])
			} else {
				action.TxHashes = outputs[1].SortedHashes()
			}
			result = append(result, ParsedAction{
				Action:        &action,
				Activities:    []activity.Activity{leg},
				ToncoinChange: legToncoinChange(leg),
			})
		}
	}
	return result
}

func legToncoinChange(leg activity.Activity) *int64 {
	t, ok := leg.(*activity.Transaction)
	if !ok || t.Slug != activity.ToncoinSlug || t.Amount == nil {
		return change(0)
	}
	return change(t.Amount.Int64())
}

func intersectHashes(hashes []models.HashType, out *TraceOutput) []models.HashType {
	result := make([]models.HashType, 0, len(hashes))
	for _, h := range hashes {
		if out.Hashes.Contains(h) {
			result = append(result, h)
		}
	}
	return result
}
