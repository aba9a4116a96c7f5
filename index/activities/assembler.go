package activities

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/toncenter/ton-activity-go/index/activity"
	"github.com/toncenter/ton-activity-go/index/cache"
	"github.com/toncenter/ton-activity-go/index/models"
	"github.com/toncenter/ton-activity-go/index/parse"
	"github.com/toncenter/ton-activity-go/index/retry"
	"github.com/toncenter/ton-activity-go/index/services"
	"golang.org/x/sync/errgroup"
)

const defaultBatchSize = 100

var (
	errStillIncomplete = errors.New("activities are still incomplete")
	errTraceNotFound   = errors.New("trace not found")
)

// Indexer is the part of the toncenter client the assembler reads from.
type Indexer interface {
	FetchActions(ctx context.Context, req services.ActionsRequest) (*models.ActionsResponse, error)
	FetchActionsByIds(ctx context.Context, ids []models.HashType) (*models.ActionsResponse, error)
	FetchTraces(ctx context.Context, msgHash models.HashType) (*models.TracesResponse, error)
	FetchPendingTraces(ctx context.Context, extMsgHash models.HashType) (*models.TracesResponse, error)
}

type Assembler struct {
	indexers map[models.Network]Indexer
	cache    *cache.Manager
	log      *logrus.Logger

	ReloadPolicy  retry.Policy
	DetailsPolicy retry.Policy
	retryOpts     []retry.Option
}

func NewAssembler(indexers map[models.Network]Indexer, c *cache.Manager, log *logrus.Logger, opts ...retry.Option) *Assembler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Assembler{
		indexers:      indexers,
		cache:         c,
		log:           log,
		ReloadPolicy:  retry.ActivityReload,
		DetailsPolicy: retry.TraceBackfill,
		retryOpts:     opts,
	}
}

type SliceRequest struct {
	Network   models.Network
	Wallet    string
	TokenSlug string
	// FromTimestamp and ToTimestamp bound the slice in milliseconds: only
	// activities older than FromTimestamp and newer than ToTimestamp.
	FromTimestamp *int64
	ToTimestamp   *int64
	Limit         int
}

func (a *Assembler) indexer(network models.Network) (Indexer, error) {
	if idx, ok := a.indexers[network]; ok && idx != nil {
		return idx, nil
	}
	return nil, models.IndexError{Code: 400, Message: fmt.Sprintf("network %q is not configured", network)}
}

func normalizeWallet(wallet string) (string, error) {
	raw, err := models.RawAddress(wallet)
	if err != nil {
		return "", models.IndexError{Code: 400, Message: fmt.Sprintf("invalid wallet address %q: %s", wallet, err.Error())}
	}
	return string(raw), nil
}

// FetchActivitySlice returns one page of wallet activities, newest first,
// with incomplete entries reloaded on a best effort basis.
func (a *Assembler) FetchActivitySlice(ctx context.Context, req SliceRequest) ([]activity.Activity, error) {
	idx, err := a.indexer(req.Network)
	if err != nil {
		return nil, err
	}
	wallet, err := normalizeWallet(req.Wallet)
	if err != nil {
		return nil, err
	}

	actionsReq := services.ActionsRequest{Account: wallet, Limit: req.Limit}
	actionsReq.EndUtime, actionsReq.StartUtime = utimeBounds(req.FromTimestamp, req.ToTimestamp)
	resp, err := idx.FetchActions(ctx, actionsReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch actions: %w", err)
	}

	list := filterByToken(a.parseActions(ctx, wallet, resp), req.TokenSlug)
	activity.SortActivities(list)
	return a.ReloadIncompleteActivities(ctx, req.Network, wallet, req.TokenSlug, list, req.Limit), nil
}

// utimeBounds turns the exclusive millisecond bounds of a slice into the
// inclusive second bounds of the indexer. Activity timestamps are whole
// seconds, so an activity sitting on a bound never shows up on two pages.
func utimeBounds(fromMs, toMs *int64) (end, start *int64) {
	if fromMs != nil {
		v := ceilDiv(*fromMs, 1000) - 1
		end = &v
	}
	if toMs != nil {
		v := floorDiv(*toMs, 1000) + 1
		start = &v
	}
	return end, start
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	return -floorDiv(-a, b)
}

// ReloadIncompleteActivities refetches the actions behind activities the
// indexer had not finished. Reloaded activities go through the same token
// filter as the list. Errors are logged and the best known list is returned.
func (a *Assembler) ReloadIncompleteActivities(ctx context.Context, network models.Network, wallet, tokenSlug string,
	list []activity.Activity, limit int) []activity.Activity {
	if len(pendingActionIds(list)) == 0 {
		return list
	}
	idx, err := a.indexer(network)
	if err != nil {
		a.log.WithError(err).Warn("reload skipped")
		return list
	}
	if limit <= 0 {
		limit = defaultBatchSize
	}
	log := a.log.WithFields(logrus.Fields{"network": network, "wallet": wallet})

	opts := append([]retry.Option{retry.PauseFirst()}, a.retryOpts...)
	_, err = retry.Do(ctx, a.ReloadPolicy, func(ctx context.Context, attempt int) (struct{}, error) {
		ids := pendingActionIds(list)
		if len(ids) == 0 {
			return struct{}{}, nil
		}
		fresh, err := a.reloadBatches(ctx, idx, wallet, ids, limit)
		list = activity.MergeSortedActivities(list, filterByToken(fresh, tokenSlug))
		if err != nil {
			return struct{}{}, err
		}
		if left := len(pendingActionIds(list)); left > 0 {
			log.WithFields(logrus.Fields{"attempt": attempt, "pending": left}).Debug("activities still incomplete")
			return struct{}{}, errStillIncomplete
		}
		return struct{}{}, nil
	}, opts...)
	if err != nil {
		log.WithError(err).Info("incomplete activities left as is")
	}
	return list
}

func (a *Assembler) reloadBatches(ctx context.Context, idx Indexer, wallet string,
	ids []models.HashType, limit int) ([]activity.Activity, error) {
	var batches [][]models.HashType
	for start := 0; start < len(ids); start += limit {
		batches = append(batches, ids[start:min(start+limit, len(ids))])
	}

	results := make([][]activity.Activity, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			resp, err := idx.FetchActionsByIds(gctx, batch)
			if err != nil {
				return fmt.Errorf("failed to reload %d actions: %w", len(batch), err)
			}
			results[i] = a.parseActions(gctx, wallet, resp)
			return nil
		})
	}
	err := g.Wait()

	var fresh []activity.Activity
	for _, r := range results {
		fresh = append(fresh, r...)
	}
	return fresh, err
}

func (a *Assembler) parseActions(ctx context.Context, wallet string, resp *models.ActionsResponse) []activity.Activity {
	if err := a.cache.RememberTokens(ctx, resp.AddressBook, resp.Metadata); err != nil {
		a.log.WithError(err).Debug("failed to cache tokens")
	}
	parsed := parse.ParseActions(resp.Actions, parse.Context{
		Wallet:      wallet,
		AddressBook: resp.AddressBook,
		Metadata:    resp.Metadata,
		Tokens:      a.cache.TokenLookup(ctx, resp.AddressBook),
	})
	var list []activity.Activity
	for _, pa := range parsed {
		list = append(list, pa.Activities...)
	}
	return list
}

func pendingActionIds(list []activity.Activity) []models.HashType {
	seen := make(map[models.HashType]struct{})
	var ids []models.HashType
	for _, act := range list {
		if !act.NeedsReload() {
			continue
		}
		id := activity.ActionID(act.ActivityID())
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func filterByToken(list []activity.Activity, slug string) []activity.Activity {
	if slug == "" {
		return list
	}
	result := list[:0]
	for _, act := range list {
		switch act := act.(type) {
		case *activity.Transaction:
			if act.Slug == slug {
				result = append(result, act)
			}
		case *activity.Swap:
			if act.From == slug || act.To == slug {
				result = append(result, act)
			}
		}
	}
	return result
}

// FetchActivityDetails fills the fee of an activity from its trace. When the
// trace cannot be found the activity comes back unchanged apart from the
// cleared ShouldLoadDetails flag.
func (a *Assembler) FetchActivityDetails(ctx context.Context, network models.Network, wallet string,
	act activity.Activity) (activity.Activity, error) {
	idx, err := a.indexer(network)
	if err != nil {
		return nil, err
	}
	wallet, err = normalizeWallet(wallet)
	if err != nil {
		return nil, err
	}
	result := act.Clone()
	msgHash, pending, load := detailsTarget(result)
	if !load {
		return result, nil
	}
	if msgHash == "" {
		applyDetails(result, nil)
		return result, nil
	}
	actionID := activity.ActionID(act.ActivityID())
	log := a.log.WithFields(logrus.Fields{
		"network":   network,
		"wallet":    wallet,
		"action_id": actionID,
	})

	out, err := retry.Do(ctx, a.DetailsPolicy, func(ctx context.Context, attempt int) (*parse.TraceOutput, error) {
		resp, err := fetchTrace(ctx, idx, msgHash, pending)
		if err != nil {
			return nil, err
		}
		trace := &resp.Traces[0]
		parsed, err := parse.ParseTrace(wallet, parse.TraceInputFromTrace(trace, resp.AddressBook, resp.Metadata, a.cache.TokenLookup(ctx, resp.AddressBook)))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		out := parsed.OutputOf(act.ActivityID())
		if out == nil && trace.IsIncomplete {
			return nil, errTraceNotFound
		}
		return out, nil
	}, a.retryOpts...)
	if err != nil {
		log.WithError(err).Info("fee details unavailable")
	}
	applyDetails(result, out)
	return result, nil
}

func detailsTarget(act activity.Activity) (msgHash models.HashType, pending bool, load bool) {
	switch r := act.(type) {
	case *activity.Transaction:
		return r.ExternalMsgHashNorm, r.Status == activity.StatusPending, r.ShouldLoadDetails
	case *activity.Swap:
		return r.ExternalMsgHashNorm, r.Status == activity.StatusPending, r.ShouldLoadDetails
	}
	return "", false, false
}

// applyDetails overwrites fee fields from out, if any, and clears the
// loading flag.
func applyDetails(act activity.Activity, out *parse.TraceOutput) {
	switch r := act.(type) {
	case *activity.Transaction:
		if out != nil {
			r.Fee = out.RealFee
		}
		r.ShouldLoadDetails = false
	case *activity.Swap:
		if out != nil {
			r.NetworkFee = activity.FormatNano(out.RealFee)
			if r.OurFee == "" {
				r.OurFee = "0"
			}
		}
		r.ShouldLoadDetails = false
	}
}

func fetchTrace(ctx context.Context, idx Indexer, msgHash models.HashType, pending bool) (*models.TracesResponse, error) {
	if pending {
		resp, err := idx.FetchPendingTraces(ctx, msgHash)
		if err == nil && len(resp.Traces) > 0 {
			return resp, nil
		}
	}
	resp, err := idx.FetchTraces(ctx, msgHash)
	if err != nil {
		return nil, err
	}
	if len(resp.Traces) == 0 {
		return nil, errTraceNotFound
	}
	return resp, nil
}

var _ Indexer = (*services.Client)(nil)
