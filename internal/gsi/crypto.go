package gsi

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/blowfish"
)

// CryptoProvider supplies the DH keypair generation, key agreement, and
// symmetric-cipher primitives a DHSession needs. Injecting this rather
// than relying on a process-wide registration (the reference
// implementation registers Bouncy Castle as a global JCE provider at load
// time) keeps the session free of global state.
type CryptoProvider interface {
	// GenerateKeyPair returns a private exponent x in [2, p-2] and the
	// corresponding public value g^x mod p.
	GenerateKeyPair(p, g *big.Int) (priv, pub *big.Int, err error)

	// SharedSecret computes peerPub^priv mod p as a big-endian byte
	// string of length ceil(bitlen(p)/8).
	SharedSecret(peerPub, priv, p *big.Int) []byte

	// NewBlockCipher constructs a block cipher for keySpec (e.g.
	// "Blowfish") over the given key.
	NewBlockCipher(keySpec string, key []byte) (cipher.Block, error)
}

// defaultProvider is the production CryptoProvider: math/big for the
// group arithmetic (Go has no stdlib Diffie-Hellman package, so this
// mirrors the original's BigInteger-based math directly, just without a
// security-provider abstraction) and golang.org/x/crypto/blowfish for the
// symmetric cipher named by the wire protocol.
type defaultProvider struct{}

// DefaultCryptoProvider is the provider used when none is supplied.
var DefaultCryptoProvider CryptoProvider = defaultProvider{}

func (defaultProvider) GenerateKeyPair(p, g *big.Int) (priv, pub *big.Int, err error) {
	if p == nil || p.Sign() <= 0 || g == nil {
		return nil, nil, fmt.Errorf("%w: invalid parameters", ErrCryptoInit)
	}

	upperBound := new(big.Int).Sub(p, big.NewInt(3)) // p - 3, so priv in [2, p-2]
	if upperBound.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: prime too small", ErrCryptoInit)
	}

	x, err := rand.Int(rand.Reader, upperBound)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCryptoInit, err)
	}
	x.Add(x, big.NewInt(2))

	y := new(big.Int).Exp(g, x, p)
	return x, y, nil
}

func (defaultProvider) SharedSecret(peerPub, priv, p *big.Int) []byte {
	secret := new(big.Int).Exp(peerPub, priv, p)

	byteLen := (p.BitLen() + 7) / 8
	out := make([]byte, byteLen)
	secret.FillBytes(out)
	return out
}

func (defaultProvider) NewBlockCipher(keySpec string, key []byte) (cipher.Block, error) {
	switch keySpec {
	case "Blowfish", "blowfish":
		return blowfish.NewCipher(key)
	default:
		return nil, fmt.Errorf("%w: %s", ErrAlgorithmUnsupported, keySpec)
	}
}
