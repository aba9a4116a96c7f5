package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xssnick/tonutils-go/address"
)

type AccountAddress string // @name AccountAddress
type HashType string       // @name HashType
type OpcodeType int64      // @name OpcodeType

type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
)

// IndexError is the error payload of the toncenter API and of this service.
type IndexError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e IndexError) Error() string {
	return e.Message
}

type RequestError struct {
	Message string `json:"error"`
	Code    int    `json:"code"`
} // @name RequestError

type AddressBookRow struct {
	UserFriendly *string   `json:"user_friendly"`
	Domain       *string   `json:"domain"`
	Interfaces   *[]string `json:"interfaces"`
} // @name AddressBookRow

type AddressBook map[string]AddressBookRow // @name AddressBook
type Metadata map[string]AddressMetadata   // @name Metadata

type AddressMetadata struct {
	IsIndexed bool        `json:"is_indexed"`
	TokenInfo []TokenInfo `json:"token_info"`
} // @name AddressMetadata

type TokenInfo struct {
	Valid       *bool                  `json:"valid,omitempty"`
	Type        *string                `json:"type,omitempty"`
	Name        *string                `json:"name,omitempty"`
	Symbol      *string                `json:"symbol,omitempty"`
	Description *string                `json:"description,omitempty"`
	Image       *string                `json:"image,omitempty"`
	Extra       map[string]interface{} `json:"extra,omitempty"`
} // @name TokenInfo

// UserFriendly returns the address book form of addr, or a bounceable form
// computed locally when the book has no entry.
func (b AddressBook) UserFriendly(addr AccountAddress) string {
	if row, ok := b[string(addr)]; ok && row.UserFriendly != nil {
		return *row.UserFriendly
	}
	if parsed, err := ParseAddress(string(addr)); err == nil {
		return parsed.String()
	}
	return string(addr)
}

// ParseAddress accepts both raw (0:abcd...) and user friendly forms.
func ParseAddress(addr string) (*address.Address, error) {
	addr = strings.TrimSpace(addr)
	if strings.Contains(addr, ":") {
		return address.ParseRawAddr(addr)
	}
	return address.ParseAddr(addr)
}

// RawAddress normalizes addr to the upper-case raw form used by the indexer.
func RawAddress(addr string) (AccountAddress, error) {
	parsed, err := ParseAddress(addr)
	if err != nil {
		return "", err
	}
	return AccountAddress(fmt.Sprintf("%d:%X", parsed.Workchain(), parsed.Data())), nil
}

// SameAddress reports whether a and b point to the same account, whatever
// form (raw, bounceable, non-bounceable) each one is written in.
func SameAddress(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	ra, err := RawAddress(a)
	if err != nil {
		return false
	}
	rb, err := RawAddress(b)
	if err != nil {
		return false
	}
	return ra == rb
}

func (v OpcodeType) String() string {
	return fmt.Sprintf("0x%08x", uint32(v))
}

func (v OpcodeType) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("\"%s\"", v.String())), nil
}

// UnmarshalJSON accepts "0x7362d09c", a decimal string or a plain number.
func (v *OpcodeType) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n int64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid opcode %s: %w", string(data), err)
		}
		*v = OpcodeType(n)
		return nil
	}
	var (
		n   uint64
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err = strconv.ParseUint(s[2:], 16, 32)
	} else {
		n, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		return fmt.Errorf("invalid opcode %q: %w", s, err)
	}
	*v = OpcodeType(n)
	return nil
}
