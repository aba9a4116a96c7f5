package parse

import "github.com/toncenter/ton-activity-go/index/models"

// walletMatcher compares addresses in any form against one wallet.
type walletMatcher struct {
	orig string
	raw  models.AccountAddress
}

func newWalletMatcher(wallet string) walletMatcher {
	raw, err := models.RawAddress(wallet)
	if err != nil {
		raw = models.AccountAddress(wallet)
	}
	return walletMatcher{orig: wallet, raw: raw}
}

func (m walletMatcher) is(addr string) bool {
	if addr == "" {
		return false
	}
	if addr == m.orig || models.AccountAddress(addr) == m.raw {
		return true
	}
	raw, err := models.RawAddress(addr)
	return err == nil && raw == m.raw
}

func (m walletMatcher) isPtr(addr *models.AccountAddress) bool {
	return addr != nil && m.is(string(*addr))
}
