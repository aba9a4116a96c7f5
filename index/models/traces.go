package models

type TraceMeta struct {
	TraceState          string `json:"trace_state"`
	Messages            int64  `json:"messages"`
	Transactions        int64  `json:"transactions"`
	PendingMessages     int64  `json:"pending_messages"`
	ClassificationState string `json:"classification_state"`
} // @name TraceMeta

type TraceNode struct {
	TransactionHash HashType     `json:"tx_hash,omitempty"`
	InMsgHash       HashType     `json:"in_msg_hash,omitempty"`
	Children        []*TraceNode `json:"children"`
} // @name TraceNode

type Trace struct {
	TraceId           *HashType                 `json:"trace_id"`
	ExternalHash      *HashType                 `json:"external_hash"`
	StartLt           uint64                    `json:"start_lt,string"`
	StartUtime        uint32                    `json:"start_utime"`
	EndLt             *uint64                   `json:"end_lt,string"`
	EndUtime          *uint32                   `json:"end_utime"`
	TraceMeta         TraceMeta                 `json:"trace_info"`
	IsIncomplete      bool                      `json:"is_incomplete"`
	Actions           *[]*Action                `json:"actions,omitempty"`
	Trace             *TraceNode                `json:"trace,omitempty"`
	TransactionsOrder []HashType                `json:"transactions_order,omitempty"`
	Transactions      map[HashType]*Transaction `json:"transactions,omitempty"`
} // @name Trace

type TracesResponse struct {
	Traces      []Trace     `json:"traces"`
	AddressBook AddressBook `json:"address_book"`
	Metadata    Metadata    `json:"metadata"`
} // @name TracesResponse

type ActionsResponse struct {
	Actions     []*Action   `json:"actions"`
	AddressBook AddressBook `json:"address_book"`
	Metadata    Metadata    `json:"metadata"`
} // @name ActionsResponse

// EmulateTraceResponse has the shape of a confirmed trace plus the emulation
// context (masterchain seqno and random seed).
type EmulateTraceResponse struct {
	McBlockSeqno uint32                    `json:"mc_block_seqno"`
	Trace        TraceNode                 `json:"trace"`
	Transactions map[HashType]*Transaction `json:"transactions"`
	Actions      *[]*Action                `json:"actions,omitempty"`
	CodeCells    *map[HashType]string      `json:"code_cells,omitempty"`
	DataCells    *map[HashType]string      `json:"data_cells,omitempty"`
	AddressBook  *AddressBook              `json:"address_book,omitempty"`
	Metadata     *Metadata                 `json:"metadata,omitempty"`
	RandSeed     string                    `json:"rand_seed"`
	IsIncomplete bool                      `json:"is_incomplete"`
} // @name EmulateTraceResponse

type EmulateRequest struct {
	Boc                string  `json:"boc"`
	IgnoreChksig       bool    `json:"ignore_chksig"`
	WithActions        bool    `json:"with_actions"`
	IncludeCodeData    bool    `json:"include_code_data"`
	IncludeAddressBook bool    `json:"include_address_book"`
	IncludeMetadata    bool    `json:"include_metadata"`
	McBlockSeqno       *uint32 `json:"mc_block_seqno"`
} // @name EmulateRequest

type WalletInformation struct {
	Balance    string  `json:"balance"`
	Status     string  `json:"status"`
	WalletType *string `json:"wallet_type,omitempty"`
	Seqno      *int64  `json:"seqno,omitempty"`
	WalletId   *int64  `json:"wallet_id,omitempty"`
} // @name WalletInformation

type SendMessageRequest struct {
	Boc string `json:"boc"`
} // @name SendMessageRequest

type SendMessageResult struct {
	MessageHash     HashType  `json:"message_hash"`
	MessageHashNorm *HashType `json:"message_hash_norm,omitempty"`
} // @name SendMessageResult

type EstimateFeeRequest struct {
	Address      string  `json:"address"`
	Body         string  `json:"body"`
	InitCode     *string `json:"init_code,omitempty"`
	InitData     *string `json:"init_data,omitempty"`
	IgnoreChksig bool    `json:"ignore_chksig"`
} // @name EstimateFeeRequest

type EstimateFeeResult struct {
	SourceFees struct {
		InFwdFee   int64 `json:"in_fwd_fee"`
		StorageFee int64 `json:"storage_fee"`
		GasFee     int64 `json:"gas_fee"`
		FwdFee     int64 `json:"fwd_fee"`
	} `json:"source_fees"`
} // @name EstimateFeeResult

// Total is the sum of source fees.
func (r *EstimateFeeResult) Total() int64 {
	f := r.SourceFees
	return f.InFwdFee + f.StorageFee + f.GasFee + f.FwdFee
}
