package jwtx

import (
	"fmt"
	"math/rand/v2"

	"github.com/aussiebroadwan/alumnet/pkg/cryptox"
)

// KeyManager owns the in-memory signing keys for one process. Keys are
// generated at startup, so tokens do not survive a restart.
type KeyManager struct {
	KeySet   *KeySet
	Verifier Verifier

	signers []*Signer
}

// NewEphemeralKeyManager generates numKeys Ed25519 signers (1..10, default 2).
func NewEphemeralKeyManager(issuer string, numKeys int) (*KeyManager, error) {
	if issuer == "" {
		return nil, fmt.Errorf("jwtx: issuer is required")
	}
	if numKeys <= 0 {
		numKeys = 2
	}
	numKeys = min(numKeys, 10)

	keyset := NewKeySet()
	signers := make([]*Signer, 0, numKeys)
	for i := range numKeys {
		kid, err := cryptox.GenerateToken(cryptox.TokenSize128)
		if err != nil {
			return nil, fmt.Errorf("jwtx: key id: %w", err)
		}
		pemKey, err := cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, err
		}
		s, err := NewSigner("alumnet-"+kid, pemKey)
		if err != nil {
			return nil, fmt.Errorf("jwtx: signer %d: %w", i+1, err)
		}
		if err := keyset.AddJWK(s.PublicJWK()); err != nil {
			return nil, fmt.Errorf("jwtx: signer %d: %w", i+1, err)
		}
		signers = append(signers, s)
	}

	return &KeyManager{
		KeySet:   keyset,
		Verifier: NewVerifier(keyset, issuer),
		signers:  signers,
	}, nil
}

// GetSigner picks one of the signers at random.
func (km *KeyManager) GetSigner() *Signer {
	if len(km.signers) == 1 {
		return km.signers[0]
	}
	return km.signers[rand.IntN(len(km.signers))]
}

func (km *KeyManager) NumSigners() int { return len(km.signers) }
