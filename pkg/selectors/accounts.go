package selectors

import (
	"errors"
	"maps"

	"sendview/pkg/models"
)

// ErrNoSendAccount is returned when neither the draft nor the wallet names a sender.
// Callers must make sure a sender is resolvable before asking for its balance.
var ErrNoSendAccount = errors.New("no account to send from")

// AddressBook supplies known external accounts for the send-to list.
type AddressBook interface {
	Entries() []models.SendAccount
}

// MergeAccountsWithIdentities overlays each account with the identity stored under
// the same address. Identity fields that are set win over balance record fields.
// The result follows the insertion order of accounts.
func MergeAccountsWithIdentities(accounts *models.OrderedMap[models.Account], identities *models.OrderedMap[models.Identity]) []models.SendAccount {
	out := make([]models.SendAccount, 0, accounts.Len())
	for _, key := range accounts.Keys() {
		acc, _ := accounts.Get(key)
		id, _ := identities.Get(key)
		out = append(out, overlayIdentity(key, acc, id))
	}
	return out
}

func overlayIdentity(key string, acc models.Account, id models.Identity) models.SendAccount {
	merged := models.SendAccount{Address: acc.Address, Balance: acc.Balance, Extra: maps.Clone(id.Extra)}
	if merged.Address == "" {
		merged.Address = key
	}
	if id.Address != "" {
		merged.Address = id.Address
	}
	if id.Name != "" {
		merged.Name = id.Name
	}
	return merged
}

// ResolveCurrentAccount returns the merged record for selectedAddress, or nil.
func ResolveCurrentAccount(accounts *models.OrderedMap[models.Account], identities *models.OrderedMap[models.Identity], selectedAddress string) *models.SendAccount {
	for _, acc := range MergeAccountsWithIdentities(accounts, identities) {
		if acc.Address == selectedAddress {
			return &acc
		}
	}
	return nil
}

// ResolveSendFrom picks the sender. Precedence:
//  1. the sender set on the draft
//  2. the currently selected account
func ResolveSendFrom(draftFrom, current *models.SendAccount) *models.SendAccount {
	if draftFrom != nil && draftFrom.Address != "" {
		return draftFrom
	}
	return current
}

// ResolveSendFromBalance returns the hex balance of the resolved sender.
func ResolveSendFromBalance(from *models.SendAccount) (string, error) {
	if from == nil {
		return "", ErrNoSendAccount
	}
	return from.Balance, nil
}

// AccountsWithSendEtherInfo returns every owned account merged with its identity.
func AccountsWithSendEtherInfo(s *models.State) []models.SendAccount {
	return MergeAccountsWithIdentities(&s.MetaMask.Accounts, &s.MetaMask.Identities)
}

// CurrentAccountWithSendEtherInfo returns the selected account merged with its identity.
func CurrentAccountWithSendEtherInfo(s *models.State) *models.SendAccount {
	return ResolveCurrentAccount(&s.MetaMask.Accounts, &s.MetaMask.Identities, s.MetaMask.SelectedAddress)
}

// SendFromObject resolves the sender record shown on the send screen.
func SendFromObject(s *models.State) *models.SendAccount {
	return ResolveSendFrom(SendFrom(s), CurrentAccountWithSendEtherInfo(s))
}

// SendFromBalance returns the sender balance, falling back to the raw balance
// record of the selected address when the draft has no sender.
func SendFromBalance(s *models.State) (string, error) {
	var selected *models.SendAccount
	if acc, ok := SelectedAccount(s); ok {
		selected = &models.SendAccount{Address: s.MetaMask.SelectedAddress, Balance: acc.Balance}
	}
	return ResolveSendFromBalance(ResolveSendFrom(SendFrom(s), selected))
}

// SendToAccounts lists owned accounts followed by address book entries.
func SendToAccounts(s *models.State, book AddressBook) []models.SendAccount {
	out := AccountsWithSendEtherInfo(s)
	if book != nil {
		out = append(out, book.Entries()...)
	}
	return out
}
