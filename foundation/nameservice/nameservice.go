// Package nameservice maps node identities to readable names. Names come
// from key files in a folder or are assigned as nodes are created.
package nameservice

import (
	"crypto/ecdsa"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/jole141/chainsim/foundation/blockchain/signature"
)

// Account represents a named private key loaded from disk.
type Account struct {
	Name string
	Key  *ecdsa.PrivateKey
}

// LoadAccounts reads every .ecdsa file under root. The file name without
// the extension is used as the account name. Accounts are sorted by name.
func LoadAccounts(root string) ([]Account, error) {
	var accounts []Account

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("loading %s: %w", fileName, err)
		}

		accounts = append(accounts, Account{
			Name: strings.TrimSuffix(path.Base(fileName), ".ecdsa"),
			Key:  privateKey,
		})

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Name < accounts[j].Name
	})

	return accounts, nil
}

// =============================================================================

// NameService maintains a map of identities for name lookup.
type NameService struct {
	mu    sync.RWMutex
	names map[string]string
}

// New constructs an empty name service.
func New() *NameService {
	return &NameService{
		names: make(map[string]string),
	}
}

// Add records the name for the identity of the specified key.
func (ns *NameService) Add(name string, publicKey ecdsa.PublicKey) string {
	identity := signature.Identity(publicKey)

	ns.mu.Lock()
	defer ns.mu.Unlock()

	ns.names[identity] = name

	return identity
}

// Lookup returns the name for the specified identity. The identity itself
// is returned when no name is known.
func (ns *NameService) Lookup(identity string) string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	name, exists := ns.names[identity]
	if !exists {
		return identity
	}
	return name
}

// Copy returns a copy of the map of identities and names.
func (ns *NameService) Copy() map[string]string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	cpy := make(map[string]string, len(ns.names))
	for identity, name := range ns.names {
		cpy[identity] = name
	}
	return cpy
}
