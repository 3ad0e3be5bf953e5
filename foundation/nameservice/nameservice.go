// Package nameservice reads the zblock/accounts folder and creates a name
// service lookup for the public keys of the known accounts.
package nameservice

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// NameService maintains a map of public keys for name lookup.
type NameService struct {
	accounts map[signature.PublicKey]string
}

// New constructs a Name Service with the keys from the zblock/accounts folder.
func New(root string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[signature.PublicKey]string),
	}

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

		pubKey := signature.PublicKeyOf(privateKey)
		ns.accounts[pubKey] = strings.TrimSuffix(path.Base(fileName), ".ecdsa")

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified public key.
func (ns *NameService) Lookup(pubKey signature.PublicKey) string {
	name, exists := ns.accounts[pubKey]
	if !exists {
		return pubKey.String()
	}
	return name
}

// Copy returns a copy of the map of names and public keys.
func (ns *NameService) Copy() map[signature.PublicKey]string {
	cpy := make(map[signature.PublicKey]string, len(ns.accounts))
	for pubKey, name := range ns.accounts {
		cpy[pubKey] = name
	}
	return cpy
}
