// github.com/kse2/pwsafe - a library for reading and writing Password Safe files
// Copyright (C) 2026  pwsafe contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

//go:build darwin

package adapter

import (
	"fmt"

	"github.com/keybase/go-keychain"
)

// KeychainPassphraseSource reads and writes a vault passphrase to the
// macOS keychain, a concrete instance of the "back-end storage
// access...specified only by the interface the core uses" collaborator
// spec.md places out of core scope (§1).
type KeychainPassphraseSource struct {
	Service string
}

// NewKeychainPassphraseSource returns a source storing items under
// service.
func NewKeychainPassphraseSource(service string) *KeychainPassphraseSource {
	return &KeychainPassphraseSource{Service: service}
}

// Load returns the stored passphrase bytes for account, if present.
func (k *KeychainPassphraseSource) Load(account string) ([]byte, error) {
	query := keychain.NewItem()
	query.SetSecClass(keychain.SecClassGenericPassword)
	query.SetService(k.Service)
	query.SetAccount(account)
	query.SetMatchLimit(keychain.MatchLimitOne)
	query.SetReturnData(true)

	results, err := keychain.QueryItem(query)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("pwsafe: no keychain entry for %q", account)
	}
	return results[0].Data, nil
}

// Store saves passphrase under account, replacing any existing entry.
func (k *KeychainPassphraseSource) Store(account string, passphrase []byte) error {
	item := keychain.NewItem()
	item.SetSecClass(keychain.SecClassGenericPassword)
	item.SetService(k.Service)
	item.SetAccount(account)
	item.SetData(passphrase)
	item.SetSynchronizable(keychain.SynchronizableNo)
	item.SetAccessible(keychain.AccessibleWhenUnlocked)

	err := keychain.AddItem(item)
	if err == keychain.ErrorDuplicateItem {
		if delErr := keychain.DeleteItem(item); delErr != nil {
			return delErr
		}
		return keychain.AddItem(item)
	}
	return err
}
