package models

import "encoding/json"

type MessageContent struct {
	Hash    *HashType        `json:"hash"`
	Body    *string          `json:"body"`
	Decoded *json.RawMessage `json:"decoded" swaggertype:"object"`
} // @name MessageContent

type Message struct {
	MsgHash        HashType        `json:"hash"`
	Source         *AccountAddress `json:"source"`
	Destination    *AccountAddress `json:"destination"`
	Value          *int64          `json:"value,string"`
	FwdFee         *uint64         `json:"fwd_fee,string"`
	CreatedLt      *uint64         `json:"created_lt,string"`
	CreatedAt      *uint32         `json:"created_at,string"`
	Opcode         *OpcodeType     `json:"opcode"`
	Bounce         *bool           `json:"bounce"`
	Bounced        *bool           `json:"bounced"`
	MessageContent *MessageContent `json:"message_content"`
	InitState      *MessageContent `json:"init_state"`
	MsgHashNorm    *HashType       `json:"hash_norm,omitempty"`
} // @name Message

type ComputePhase struct {
	IsSkipped *bool   `json:"skipped,omitempty"`
	Reason    *string `json:"reason,omitempty"`
	Success   *bool   `json:"success,omitempty"`
	GasFees   *int64  `json:"gas_fees,string,omitempty"`
	GasUsed   *int64  `json:"gas_used,string,omitempty"`
	ExitCode  *int32  `json:"exit_code,omitempty"`
} // @name ComputePhase

type ActionPhase struct {
	Success      *bool  `json:"success,omitempty"`
	Valid        *bool  `json:"valid,omitempty"`
	NoFunds      *bool  `json:"no_funds,omitempty"`
	TotalFwdFees *int64 `json:"total_fwd_fees,string,omitempty"`
	ResultCode   *int32 `json:"result_code,omitempty"`
} // @name ActionPhase

type TransactionDescr struct {
	Type      string        `json:"type"`
	Aborted   *bool         `json:"aborted,omitempty"`
	Destroyed *bool         `json:"destroyed,omitempty"`
	ComputePh *ComputePhase `json:"compute_ph,omitempty"`
	Action    *ActionPhase  `json:"action,omitempty"`
} // @name TransactionDescr

type Transaction struct {
	Account           AccountAddress   `json:"account"`
	Hash              HashType         `json:"hash"`
	Lt                int64            `json:"lt,string"`
	Now               int32            `json:"now"`
	McSeqno           int32            `json:"mc_block_seqno"`
	TraceId           *HashType        `json:"trace_id,omitempty"`
	TraceExternalHash *HashType        `json:"trace_external_hash,omitempty"`
	OrigStatus        string           `json:"orig_status"`
	EndStatus         string           `json:"end_status"`
	TotalFees         int64            `json:"total_fees,string"`
	Descr             TransactionDescr `json:"description"`
	InMsg             *Message         `json:"in_msg"`
	OutMsgs           []*Message       `json:"out_msgs"`
	Emulated          bool             `json:"emulated"`
} // @name Transaction

// IsSuccess reports whether both compute and action phases went through.
func (t *Transaction) IsSuccess() bool {
	if t.Descr.Aborted != nil && *t.Descr.Aborted {
		return false
	}
	if ph := t.Descr.ComputePh; ph != nil && ph.Success != nil && !*ph.Success {
		return false
	}
	if ph := t.Descr.Action; ph != nil && ph.Success != nil && !*ph.Success {
		return false
	}
	return true
}
