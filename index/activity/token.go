package activity

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/toncenter/ton-activity-go/index/models"
)

// Token is the part of jetton metadata the activities need.
type Token struct {
	Slug     string `json:"slug" msgpack:"slug"`
	Address  string `json:"address" msgpack:"address"`
	Symbol   string `json:"symbol" msgpack:"symbol"`
	Decimals int32  `json:"decimals" msgpack:"decimals"`
}

var Toncoin = Token{Slug: ToncoinSlug, Symbol: "TON", Decimals: ToncoinDecimals}

// TokenSlug builds the slug of a jetton from its user friendly master address.
func TokenSlug(userFriendly string) string {
	if len(userFriendly) > 10 {
		userFriendly = userFriendly[:10]
	}
	return "ton-" + strings.ToLower(userFriendly)
}

// TokenFromMetadata resolves a jetton master through the address book and the
// token_info metadata of an indexer response. ok is false when the response
// carries no jetton_masters metadata for it.
func TokenFromMetadata(master models.AccountAddress, book models.AddressBook, meta models.Metadata) (token Token, ok bool) {
	friendly := book.UserFriendly(master)
	token = Token{Slug: TokenSlug(friendly), Address: friendly, Decimals: ToncoinDecimals}

	entry, found := meta[string(master)]
	if !found {
		return token, false
	}
	for _, info := range entry.TokenInfo {
		if info.Type == nil || *info.Type != "jetton_masters" {
			continue
		}
		if info.Symbol != nil {
			token.Symbol = *info.Symbol
		}
		if d, ok := parseDecimals(info.Extra["decimals"]); ok {
			token.Decimals = d
		}
		return token, true
	}
	return token, false
}

func parseDecimals(v interface{}) (int32, bool) {
	switch d := v.(type) {
	case string:
		n, err := strconv.ParseInt(d, 10, 32)
		return int32(n), err == nil
	case float64:
		return int32(d), true
	case int64:
		return int32(d), true
	}
	return 0, false
}

// FormatAmount renders a base-unit amount as a decimal string, e.g. 2194927
// with 6 decimals is "2.194927".
func FormatAmount(amount *big.Int, decimals int32) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -decimals).String()
}

// FormatNano renders a nanoton amount.
func FormatNano(amount int64) string {
	return decimal.New(amount, -ToncoinDecimals).String()
}

// ParseAmount reads an integer amount as sent by the indexer.
func ParseAmount(s *string) *big.Int {
	if s == nil {
		return new(big.Int)
	}
	v, ok := new(big.Int).SetString(*s, 10)
	if !ok {
		return new(big.Int)
	}
	return v
}
