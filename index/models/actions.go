package models

import (
	"encoding/json"
	"fmt"
)

const (
	ActionTonTransfer            = "ton_transfer"
	ActionCallContract           = "call_contract"
	ActionContractDeploy         = "contract_deploy"
	ActionJettonTransfer         = "jetton_transfer"
	ActionJettonSwap             = "jetton_swap"
	ActionJettonBurn             = "jetton_burn"
	ActionJettonMint             = "jetton_mint"
	ActionDexDepositLiquidity    = "dex_deposit_liquidity"
	ActionDexWithdrawLiquidity   = "dex_withdraw_liquidity"
	ActionStakeDeposit           = "stake_deposit"
	ActionStakeWithdrawal        = "stake_withdrawal"
	ActionStakeWithdrawalRequest = "stake_withdrawal_request"
	ActionNftTransfer            = "nft_transfer"
	ActionNftPurchase            = "nft_purchase"
	ActionNftMint                = "nft_mint"
	ActionDnsPurchase            = "dns_purchase"
	ActionChangeDns              = "change_dns"
	ActionDeleteDns              = "delete_dns"
	ActionRenewDns               = "renew_dns"
	ActionAuctionBid             = "auction_bid"
)

// ActionDetails is the closed set of action payloads. The concrete type is
// selected by Action.Type when decoding.
type ActionDetails interface {
	actionDetails()
}

type ActionDetailsCallContract struct {
	OpCode      *OpcodeType     `json:"opcode,omitempty"`
	Source      *AccountAddress `json:"source,omitempty"`
	Destination *AccountAddress `json:"destination,omitempty"`
	Value       *string         `json:"value,omitempty"`
}

type ActionDetailsContractDeploy struct {
	OpCode      *OpcodeType     `json:"opcode,omitempty"`
	Source      *AccountAddress `json:"source,omitempty"`
	Destination *AccountAddress `json:"destination,omitempty"`
	Value       *string         `json:"value,omitempty"`
}

type ActionDetailsTonTransfer struct {
	Source      *AccountAddress `json:"source"`
	Destination *AccountAddress `json:"destination"`
	Value       *string         `json:"value"`
	Comment     *string         `json:"comment"`
	Encrypted   *bool           `json:"encrypted"`
}

type ActionDetailsAuctionBid struct {
	Amount        *string         `json:"amount"`
	Bidder        *AccountAddress `json:"bidder"`
	Auction       *AccountAddress `json:"auction"`
	NftItem       *AccountAddress `json:"nft_item"`
	NftCollection *AccountAddress `json:"nft_collection"`
}

type ActionDetailsChangeDnsValue struct {
	SumType                *string `json:"sum_type"`
	DnsSmcAddress          *string `json:"dns_smc_address"`
	DnsAdnlAddress         *string `json:"dns_adnl_address"`
	DnsText                *string `json:"dns_text"`
	DnsNextResolverAddress *string `json:"dns_next_resolver_address"`
	DnsStorageAddress      *string `json:"dns_storage_address"`
	Flags                  *int64  `json:"flags"`
}

type ActionDetailsChangeDns struct {
	Key           *string                     `json:"key"`
	Value         ActionDetailsChangeDnsValue `json:"value"`
	Source        *AccountAddress             `json:"source"`
	Asset         *AccountAddress             `json:"asset"`
	NFTCollection *AccountAddress             `json:"nft_collection"`
}

type ActionDetailsDeleteDns struct {
	Key           *string         `json:"hash"`
	Source        *AccountAddress `json:"source"`
	Asset         *AccountAddress `json:"asset"`
	NFTCollection *AccountAddress `json:"nft_collection"`
}

type ActionDetailsRenewDns struct {
	Source        *AccountAddress `json:"source"`
	Asset         *AccountAddress `json:"asset"`
	NFTCollection *AccountAddress `json:"nft_collection"`
}

type ActionDetailsJettonBurn struct {
	Owner             *AccountAddress `json:"owner"`
	OwnerJettonWallet *AccountAddress `json:"owner_jetton_wallet"`
	Asset             *AccountAddress `json:"asset"`
	Amount            *string         `json:"amount"`
}

type ActionDetailsJettonSwapTransfer struct {
	Asset                   *AccountAddress `json:"asset"`
	Source                  *AccountAddress `json:"source"`
	Destination             *AccountAddress `json:"destination"`
	SourceJettonWallet      *AccountAddress `json:"source_jetton_wallet"`
	DestinationJettonWallet *AccountAddress `json:"destination_jetton_wallet"`
	Amount                  *string         `json:"amount"`
}

type ActionDetailsJettonSwap struct {
	Dex                 *string                          `json:"dex"`
	Sender              *AccountAddress                  `json:"sender"`
	AssetIn             *AccountAddress                  `json:"asset_in"`
	AssetOut            *AccountAddress                  `json:"asset_out"`
	DexIncomingTransfer *ActionDetailsJettonSwapTransfer `json:"dex_incoming_transfer"`
	DexOutgoingTransfer *ActionDetailsJettonSwapTransfer `json:"dex_outgoing_transfer"`
}

type ActionDetailsJettonTransfer struct {
	Asset                *AccountAddress `json:"asset"`
	Sender               *AccountAddress `json:"sender"`
	Receiver             *AccountAddress `json:"receiver"`
	SenderJettonWallet   *AccountAddress `json:"sender_jetton_wallet"`
	ReceiverJettonWallet *AccountAddress `json:"receiver_jetton_wallet"`
	Amount               *string         `json:"amount"`
	Comment              *string         `json:"comment"`
	IsEncryptedComment   *bool           `json:"is_encrypted_comment"`
	ForwardAmount        *string         `json:"forward_amount"`
}

type ActionDetailsJettonMint struct {
	Asset                *AccountAddress `json:"asset"`
	Receiver             *AccountAddress `json:"receiver"`
	ReceiverJettonWallet *AccountAddress `json:"receiver_jetton_wallet"`
	Amount               *string         `json:"amount"`
	TonAmount            *string         `json:"ton_amount"`
}

type ActionDetailsNftMint struct {
	Owner         *AccountAddress `json:"owner,omitempty"`
	NftItem       *AccountAddress `json:"nft_item"`
	NftCollection *AccountAddress `json:"nft_collection"`
	NftItemIndex  *string         `json:"nft_item_index"`
}

type ActionDetailsNftTransfer struct {
	NftCollection      *AccountAddress `json:"nft_collection"`
	NftItem            *AccountAddress `json:"nft_item"`
	NftItemIndex       *string         `json:"nft_item_index"`
	OldOwner           *AccountAddress `json:"old_owner,omitempty"`
	NewOwner           *AccountAddress `json:"new_owner"`
	IsPurchase         *bool           `json:"is_purchase"`
	Price              *string         `json:"price,omitempty"`
	Comment            *string         `json:"comment"`
	Marketplace        *string         `json:"marketplace"`
	RealOldOwner       *AccountAddress `json:"real_old_owner"`
	MarketplaceAddress *AccountAddress `json:"marketplace_address"`
	PayoutAmount       *string         `json:"payout_amount"`
}

type ActionDetailsDnsPurchase struct {
	NftCollection *AccountAddress `json:"nft_collection"`
	NftItem       *AccountAddress `json:"nft_item"`
	NftItemIndex  *string         `json:"nft_item_index"`
	NewOwner      *AccountAddress `json:"new_owner"`
	Price         *string         `json:"price"`
}

type ActionDetailsDexDepositLiquidity struct {
	Dex            *string         `json:"dex"`
	Amount1        *string         `json:"amount_1"`
	Amount2        *string         `json:"amount_2"`
	Asset1         *AccountAddress `json:"asset_1"`
	Asset2         *AccountAddress `json:"asset_2"`
	Source         *AccountAddress `json:"source"`
	Pool           *AccountAddress `json:"pool"`
	LpTokensMinted *string         `json:"lp_tokens_minted"`
}

type ActionDetailsDexWithdrawLiquidity struct {
	Dex           *string         `json:"dex"`
	Amount1       *string         `json:"amount_1"`
	Amount2       *string         `json:"amount_2"`
	Asset1        *AccountAddress `json:"asset_1"`
	Asset2        *AccountAddress `json:"asset_2"`
	LpTokensBurnt *string         `json:"lp_tokens_burnt"`
	Source        *AccountAddress `json:"source"`
	Pool          *AccountAddress `json:"pool"`
}

type ActionDetailsStakeDeposit struct {
	Provider     *string         `json:"provider"`
	StakeHolder  *AccountAddress `json:"stake_holder"`
	Pool         *AccountAddress `json:"pool"`
	Amount       *string         `json:"amount"`
	TokensMinted *string         `json:"tokens_minted"`
	Asset        *AccountAddress `json:"asset"`
}

type ActionDetailsWithdrawStake struct {
	Provider    *string         `json:"provider"`
	StakeHolder *AccountAddress `json:"stake_holder"`
	Pool        *AccountAddress `json:"pool"`
	Amount      *string         `json:"amount"`
	PayoutNft   *AccountAddress `json:"payout_nft"`
	TokensBurnt *string         `json:"tokens_burnt"`
	Asset       *AccountAddress `json:"asset"`
}

type ActionDetailsWithdrawStakeRequest struct {
	Provider    *string         `json:"provider"`
	StakeHolder *AccountAddress `json:"stake_holder"`
	Pool        *AccountAddress `json:"pool"`
	PayoutNft   *AccountAddress `json:"payout_nft"`
	TokensBurnt *string         `json:"tokens_burnt"`
}

// ActionDetailsUnknown keeps the payload of action types this service does
// not interpret.
type ActionDetailsUnknown struct {
	Raw json.RawMessage
}

func (d ActionDetailsUnknown) MarshalJSON() ([]byte, error) {
	if len(d.Raw) == 0 {
		return []byte("null"), nil
	}
	return d.Raw, nil
}

func (*ActionDetailsCallContract) actionDetails()         {}
func (*ActionDetailsContractDeploy) actionDetails()       {}
func (*ActionDetailsTonTransfer) actionDetails()          {}
func (*ActionDetailsAuctionBid) actionDetails()           {}
func (*ActionDetailsChangeDns) actionDetails()            {}
func (*ActionDetailsDeleteDns) actionDetails()            {}
func (*ActionDetailsRenewDns) actionDetails()             {}
func (*ActionDetailsJettonBurn) actionDetails()           {}
func (*ActionDetailsJettonSwap) actionDetails()           {}
func (*ActionDetailsJettonTransfer) actionDetails()       {}
func (*ActionDetailsJettonMint) actionDetails()           {}
func (*ActionDetailsNftMint) actionDetails()              {}
func (*ActionDetailsNftTransfer) actionDetails()          {}
func (*ActionDetailsDnsPurchase) actionDetails()          {}
func (*ActionDetailsDexDepositLiquidity) actionDetails()  {}
func (*ActionDetailsDexWithdrawLiquidity) actionDetails() {}
func (*ActionDetailsStakeDeposit) actionDetails()         {}
func (*ActionDetailsWithdrawStake) actionDetails()        {}
func (*ActionDetailsWithdrawStakeRequest) actionDetails() {}
func (*ActionDetailsUnknown) actionDetails()              {}

type Action struct {
	TraceId               *HashType     `json:"trace_id"`
	ActionId              HashType      `json:"action_id"`
	StartLt               int64         `json:"start_lt,string"`
	EndLt                 int64         `json:"end_lt,string"`
	StartUtime            int64         `json:"start_utime"`
	EndUtime              int64         `json:"end_utime"`
	TraceEndLt            int64         `json:"trace_end_lt,string"`
	TraceEndUtime         int64         `json:"trace_end_utime"`
	TxHashes              []HashType    `json:"transactions"`
	Success               *bool         `json:"success"`
	Type                  string        `json:"type"`
	Details               ActionDetails `json:"details"`
	TraceExternalHash     *HashType     `json:"trace_external_hash,omitempty"`
	TraceExternalHashNorm *HashType     `json:"trace_external_hash_norm,omitempty"`
	Accounts              []string      `json:"accounts,omitempty"`
	Finality              string        `json:"finality,omitempty"`
} // @name Action

// IsIncomplete reports whether the indexer is still assembling the action.
func (a *Action) IsIncomplete() bool {
	return a.Success == nil || a.TraceEndLt == 0 || a.Finality == "pending"
}

// ExternalHashNorm prefers the normalized external message hash.
func (a *Action) ExternalHashNorm() HashType {
	if a.TraceExternalHashNorm != nil {
		return *a.TraceExternalHashNorm
	}
	if a.TraceExternalHash != nil {
		return *a.TraceExternalHash
	}
	return ""
}

func newActionDetails(actionType string) ActionDetails {
	switch actionType {
	case ActionCallContract:
		return &ActionDetailsCallContract{}
	case ActionContractDeploy:
		return &ActionDetailsContractDeploy{}
	case ActionTonTransfer:
		return &ActionDetailsTonTransfer{}
	case ActionAuctionBid:
		return &ActionDetailsAuctionBid{}
	case ActionChangeDns:
		return &ActionDetailsChangeDns{}
	case ActionDeleteDns:
		return &ActionDetailsDeleteDns{}
	case ActionRenewDns:
		return &ActionDetailsRenewDns{}
	case ActionJettonBurn:
		return &ActionDetailsJettonBurn{}
	case ActionJettonSwap:
		return &ActionDetailsJettonSwap{}
	case ActionJettonTransfer:
		return &ActionDetailsJettonTransfer{}
	case ActionJettonMint:
		return &ActionDetailsJettonMint{}
	case ActionNftMint:
		return &ActionDetailsNftMint{}
	case ActionNftTransfer, ActionNftPurchase:
		return &ActionDetailsNftTransfer{}
	case ActionDnsPurchase:
		return &ActionDetailsDnsPurchase{}
	case ActionDexDepositLiquidity:
		return &ActionDetailsDexDepositLiquidity{}
	case ActionDexWithdrawLiquidity:
		return &ActionDetailsDexWithdrawLiquidity{}
	case ActionStakeDeposit:
		return &ActionDetailsStakeDeposit{}
	case ActionStakeWithdrawal:
		return &ActionDetailsWithdrawStake{}
	case ActionStakeWithdrawalRequest:
		return &ActionDetailsWithdrawStakeRequest{}
	}
	return nil
}

func (a *Action) UnmarshalJSON(data []byte) error {
	type plain Action
	var raw struct {
		plain
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Action(raw.plain)

	details := newActionDetails(a.Type)
	if details == nil {
		a.Details = &ActionDetailsUnknown{Raw: raw.Details}
		return nil
	}
	if len(raw.Details) > 0 && string(raw.Details) != "null" {
		if err := json.Unmarshal(raw.Details, details); err != nil {
			return fmt.Errorf("failed to decode %s details of action %s: %w", a.Type, a.ActionId, err)
		}
	}
	a.Details = details
	return nil
}
