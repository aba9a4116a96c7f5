package parse

import (
	"math/big"
	"strconv"

	"github.com/toncenter/ton-activity-go/index/activity"
	"github.com/toncenter/ton-activity-go/index/models"
)

// ParsedAction is an indexer action together with the activities it shows to
// the wallet owner and the Toncoin flow it accounts for.
type ParsedAction struct {
	Action        *models.Action
	Activities    []activity.Activity
	ToncoinChange *int64
}

// TokenLookup resolves jetton metadata missing from a response.
type TokenLookup func(master models.AccountAddress) (activity.Token, bool)

type Context struct {
	Wallet      string
	AddressBook models.AddressBook
	Metadata    models.Metadata
	Tokens      TokenLookup
}

type actionParser struct {
	ctx    Context
	wallet walletMatcher
}

// ParseActions classifies indexer actions into activities. Actions of types
// the wallet does not display are dropped, so every result has at least one
// activity.
func ParseActions(actions []*models.Action, ctx Context) []ParsedAction {
	p := actionParser{ctx: ctx, wallet: newWalletMatcher(ctx.Wallet)}
	result := make([]ParsedAction, 0, len(actions))
	for _, action := range actions {
		if action == nil {
			continue
		}
		if pa, ok := p.parse(action); ok {
			result = append(result, pa)
		}
	}
	return result
}

func (p actionParser) friendly(addr *models.AccountAddress) string {
	if addr == nil {
		return ""
	}
	return p.ctx.AddressBook.UserFriendly(*addr)
}

func (p actionParser) token(master *models.AccountAddress) activity.Token {
	if master == nil {
		return activity.Toncoin
	}
	token, ok := activity.TokenFromMetadata(*master, p.ctx.AddressBook, p.ctx.Metadata)
	if !ok && p.ctx.Tokens != nil {
		if cached, found := p.ctx.Tokens(*master); found {
			return cached
		}
	}
	return token
}

func status(a *models.Action) activity.Status {
	switch {
	case a.Success == nil:
		return activity.StatusPending
	case *a.Success:
		return activity.StatusCompleted
	default:
		return activity.StatusFailed
	}
}

func nano(s *string) int64 {
	if s == nil {
		return 0
	}
	v, err := strconv.ParseInt(*s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func change(v int64) *int64 {
	return &v
}

// transfer builds a transaction activity seen from the wallet side: the
// amount is negative unless the wallet is only the receiver.
func (p actionParser) transfer(a *models.Action, leg int, txType activity.TransactionType,
	from, to *models.AccountAddress, amount *big.Int, token activity.Token) *activity.Transaction {
	incoming := p.wallet.isPtr(to) && !p.wallet.isPtr(from)
	signed := new(big.Int).Set(amount)
	if !incoming {
		signed.Neg(signed)
	}
	return &activity.Transaction{
		ID:                  activity.BuildID(a.ActionId, leg),
		Timestamp:           a.StartUtime * 1000,
		Type:                txType,
		FromAddress:         p.friendly(from),
		ToAddress:           p.friendly(to),
		Amount:              signed,
		Slug:                token.Slug,
		IsIncoming:          incoming,
		Status:              status(a),
		ExternalMsgHashNorm: a.ExternalHashNorm(),
		ShouldReload:        a.IsIncomplete(),
		ShouldLoadDetails:   !incoming,
	}
}

// toncoinFlow is the wallet-side Toncoin change of a transfer of value.
func (p actionParser) toncoinFlow(from, to *models.AccountAddress, value int64) *int64 {
	fromWallet, toWallet := p.wallet.isPtr(from), p.wallet.isPtr(to)
	switch {
	case fromWallet && !toWallet:
		return change(-value)
	case toWallet && !fromWallet:
		return change(value)
	}
	return nil
}

func (p actionParser) parse(a *models.Action) (ParsedAction, bool) {
	pa := ParsedAction{Action: a}

	switch d := a.Details.(type) {
	case *models.ActionDetailsTonTransfer:
		value := nano(d.Value)
		t := p.transfer(a, 0, activity.TypeTransfer, d.Source, d.Destination, big.NewInt(value), activity.Toncoin)
		if d.Comment != nil && (d.Encrypted == nil || !*d.Encrypted) {
			t.Comment = d.Comment
		}
		pa.Activities = []activity.Activity{t}
		pa.ToncoinChange = p.toncoinFlow(d.Source, d.Destination, value)

	case *models.ActionDetailsCallContract:
		value := nano(d.Value)
		if d.OpCode != nil && *d.OpCode == opExcess {
			// refunds stay out of the toncoin change so that they count as excess
			pa.Activities = []activity.Activity{
				p.transfer(a, 0, activity.TypeExcess, d.Source, d.Destination, big.NewInt(value), activity.Toncoin),
			}
			break
		}
		pa.Activities = []activity.Activity{
			p.transfer(a, 0, activity.TypeCallContract, d.Source, d.Destination, big.NewInt(value), activity.Toncoin),
		}
		pa.ToncoinChange = p.toncoinFlow(d.Source, d.Destination, value)

	case *models.ActionDetailsContractDeploy:
		value := nano(d.Value)
		pa.Activities = []activity.Activity{
			p.transfer(a, 0, activity.TypeContractDeploy, d.Source, d.Destination, big.NewInt(value), activity.Toncoin),
		}
		pa.ToncoinChange = p.toncoinFlow(d.Source, d.Destination, value)

	case *models.ActionDetailsJettonTransfer:
		t := p.transfer(a, 0, activity.TypeTransfer, d.Sender, d.Receiver, activity.ParseAmount(d.Amount), p.token(d.Asset))
		if d.Comment != nil && (d.IsEncryptedComment == nil || !*d.IsEncryptedComment) {
			t.Comment = d.Comment
		}
		pa.Activities = []activity.Activity{t}

	case *models.ActionDetailsJettonSwap:
		pa.Activities = []activity.Activity{p.swap(a, d)}
		if d.DexIncomingTransfer != nil && d.AssetIn == nil {
			pa.ToncoinChange = change(-nano(d.DexIncomingTransfer.Amount))
		} else if d.DexOutgoingTransfer != nil && d.AssetOut == nil {
			pa.ToncoinChange = change(nano(d.DexOutgoingTransfer.Amount))
		}

	case *models.ActionDetailsDexDepositLiquidity:
		legs, ton := p.liquidityLegs(a, activity.TypeLiquidityDeposit, d.Source, d.Pool,
			[2]*models.AccountAddress{d.Asset1, d.Asset2}, [2]*string{d.Amount1, d.Amount2})
		pa.Activities = legs
		pa.ToncoinChange = change(-ton)

	case *models.ActionDetailsDexWithdrawLiquidity:
		legs, ton := p.liquidityLegs(a, activity.TypeLiquidityWithdraw, d.Pool, d.Source,
			[2]*models.AccountAddress{d.Asset1, d.Asset2}, [2]*string{d.Amount1, d.Amount2})
		pa.Activities = legs
		pa.ToncoinChange = change(ton)

	case *models.ActionDetailsStakeDeposit:
		amount := activity.ParseAmount(d.Amount)
		pa.Activities = []activity.Activity{
			p.transfer(a, 0, activity.TypeStake, d.StakeHolder, d.Pool, amount, p.token(d.Asset)),
		}
		if d.Asset == nil {
			pa.ToncoinChange = change(-amount.Int64())
		}

	case *models.ActionDetailsWithdrawStake:
		amount := activity.ParseAmount(d.Amount)
		pa.Activities = []activity.Activity{
			p.transfer(a, 0, activity.TypeUnstake, d.Pool, d.StakeHolder, amount, p.token(d.Asset)),
		}
		if d.Asset == nil {
			pa.ToncoinChange = change(amount.Int64())
		}

	case *models.ActionDetailsWithdrawStakeRequest:
		pa.Activities = []activity.Activity{
			p.transfer(a, 0, activity.TypeUnstakeRequest, d.StakeHolder, d.Pool, new(big.Int), activity.Toncoin),
		}

	case *models.ActionDetailsNftTransfer:
		pa.Activities, pa.ToncoinChange = p.nftTransfer(a, d)

	case *models.ActionDetailsNftMint:
		t := p.transfer(a, 0, activity.TypeNftMint, d.NftCollection, d.Owner, new(big.Int), activity.Toncoin)
		t.NftAddress = p.friendly(d.NftItem)
		pa.Activities = []activity.Activity{t}

	case *models.ActionDetailsDnsPurchase:
		price := nano(d.Price)
		t := p.transfer(a, 0, activity.TypeDnsPurchase, d.NewOwner, d.NftItem, big.NewInt(price), activity.Toncoin)
		t.NftAddress = p.friendly(d.NftItem)
		pa.Activities = []activity.Activity{t}
		if p.wallet.isPtr(d.NewOwner) {
			pa.ToncoinChange = change(-price)
		}

	case *models.ActionDetailsChangeDns:
		t := p.transfer(a, 0, dnsChangeType(d.Value.SumType), d.Source, d.Asset, new(big.Int), activity.Toncoin)
		t.NftAddress = p.friendly(d.Asset)
		pa.Activities = []activity.Activity{t}

	case *models.ActionDetailsDeleteDns:
		t := p.transfer(a, 0, activity.TypeDnsDelete, d.Source, d.Asset, new(big.Int), activity.Toncoin)
		t.NftAddress = p.friendly(d.Asset)
		pa.Activities = []activity.Activity{t}

	case *models.ActionDetailsRenewDns:
		t := p.transfer(a, 0, activity.TypeDnsRenew, d.Source, d.Asset, new(big.Int), activity.Toncoin)
		t.NftAddress = p.friendly(d.Asset)
		pa.Activities = []activity.Activity{t}

	case *models.ActionDetailsJettonBurn:
		pa.Activities = []activity.Activity{
			p.transfer(a, 0, activity.TypeBurn, d.Owner, d.Asset, activity.ParseAmount(d.Amount), p.token(d.Asset)),
		}

	case *models.ActionDetailsJettonMint:
		pa.Activities = []activity.Activity{
			p.transfer(a, 0, activity.TypeMint, d.Asset, d.Receiver, activity.ParseAmount(d.Amount), p.token(d.Asset)),
		}

	case *models.ActionDetailsAuctionBid:
		amount := nano(d.Amount)
		t := p.transfer(a, 0, activity.TypeAuctionBid, d.Bidder, d.Auction, big.NewInt(amount), activity.Toncoin)
		t.NftAddress = p.friendly(d.NftItem)
		pa.Activities = []activity.Activity{t}
		pa.ToncoinChange = p.toncoinFlow(d.Bidder, d.Auction, amount)

	default:
		return pa, false
	}
	return pa, len(pa.Activities) > 0
}

func (p actionParser) swap(a *models.Action, d *models.ActionDetailsJettonSwap) *activity.Swap {
	in, out := p.token(d.AssetIn), p.token(d.AssetOut)
	var inAmount, outAmount *string
	if d.DexIncomingTransfer != nil {
		inAmount = d.DexIncomingTransfer.Amount
	}
	if d.DexOutgoingTransfer != nil {
		outAmount = d.DexOutgoingTransfer.Amount
	}
	hashes := make([]string, 0, len(a.TxHashes))
	for _, h := range a.TxHashes {
		hashes = append(hashes, string(h))
	}
	return &activity.Swap{
		ID:                  activity.BuildID(a.ActionId, 0),
		Timestamp:           a.StartUtime * 1000,
		FromAddress:         p.friendly(d.Sender),
		From:                in.Slug,
		FromAmount:          activity.FormatAmount(activity.ParseAmount(inAmount), in.Decimals),
		To:                  out.Slug,
		ToAmount:            activity.FormatAmount(activity.ParseAmount(outAmount), out.Decimals),
		NetworkFee:          "0",
		OurFee:              "0",
		Status:              status(a),
		Hashes:              hashes,
		ExternalMsgHashNorm: a.ExternalHashNorm(),
		ShouldReload:        a.IsIncomplete(),
		ShouldLoadDetails:   true,
	}
}

// liquidityLegs returns one activity per non-empty leg and the Toncoin amount
// moved by the legs.
func (p actionParser) liquidityLegs(a *models.Action, txType activity.TransactionType,
	from, to *models.AccountAddress, assets [2]*models.AccountAddress, amounts [2]*string) ([]activity.Activity, int64) {
	type leg struct {
		asset  *models.AccountAddress
		amount *big.Int
	}
	legs := make([]leg, 0, 2)
	for i := range assets {
		amount := activity.ParseAmount(amounts[i])
		if amount.Sign() > 0 {
			legs = append(legs, leg{asset: assets[i], amount: amount})
		}
	}

	var ton int64
	result := make([]activity.Activity, 0, len(legs))
	for i, l := range legs {
		n := 0
		if len(legs) > 1 {
			n = i + 1
		}
		result = append(result, p.transfer(a, n, txType, from, to, l.amount, p.token(l.asset)))
		if l.asset == nil {
			ton += l.amount.Int64()
		}
	}
	return result, ton
}

func (p actionParser) nftTransfer(a *models.Action, d *models.ActionDetailsNftTransfer) ([]activity.Activity, *int64) {
	oldOwner := d.OldOwner
	if d.RealOldOwner != nil {
		oldOwner = d.RealOldOwner
	}
	isPurchase := d.IsPurchase != nil && *d.IsPurchase && d.Price != nil

	var (
		t    *activity.Transaction
		flow *int64
	)
	if isPurchase {
		price := nano(d.Price)
		t = p.transfer(a, 0, activity.TypeNftTrade, d.NewOwner, oldOwner, big.NewInt(price), activity.Toncoin)
		if p.wallet.isPtr(d.NewOwner) {
			flow = change(-price)
		} else if p.wallet.isPtr(oldOwner) {
			// the seller is the receiving side of the payment
			t.Amount.Abs(t.Amount)
			t.IsIncoming = true
			t.ShouldLoadDetails = false
			flow = change(price)
		}
	} else {
		txType := activity.TypeNftTransferred
		if p.wallet.isPtr(d.NewOwner) {
			txType = activity.TypeNftReceived
		}
		t = p.transfer(a, 0, txType, oldOwner, d.NewOwner, new(big.Int), activity.Toncoin)
	}
	t.NftAddress = p.friendly(d.NftItem)
	if d.Comment != nil {
		t.Comment = d.Comment
	}
	return []activity.Activity{t}, flow
}

func dnsChangeType(sumType *string) activity.TransactionType {
	if sumType == nil {
		return activity.TypeDnsChangeAddress
	}
	switch *sumType {
	case "DNSAdnlAddress":
		return activity.TypeDnsChangeSite
	case "DNSStorageAddress":
		return activity.TypeDnsChangeStorage
	case "DNSNextResolver":
		return activity.TypeDnsChangeSubdomains
	case "DNSText":
		return activity.TypeDnsChangeText
	}
	return activity.TypeDnsChangeAddress
}
