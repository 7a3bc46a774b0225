package gsi

import (
	"crypto/cipher"
	"fmt"
	"math/big"
	"strings"
)

const (
	dhHeader       = "-----BEGIN DH PARAMETERS-----"
	dhFooter       = "-----END DH PARAMETERS-----"
	dhPubKeyHeader = "---BPUB---"
	dhPubKeyFooter = "---EPUB---"
)

// dhPrime is the fixed 512-bit safe prime shared by both sides of every
// session. It was generated with OpenSSL and passes its validity tests;
// bitwise-compatible parameters are required to interoperate with the
// xrootd GSI reference implementation, so this value must never change.
var dhPrime, _ = new(big.Int).SetString(
	"a8379d6fffe863a0b1470c26dd1a450be2039af083b1ba5bfa1d2f5b2a890802"+
		"d8c4d4668d148d35bb24b1af1ad375c7c03b61aa853f5669aef267da20875d93", 16)

var dhGenerator = big.NewInt(2)

// AgreementState is the DH session's phase.
type AgreementState int

const (
	Initialized AgreementState = iota
	Finalized
)

// DHSession agrees on a shared secret with a single peer and uses it to
// decrypt authenticator payloads, the Go shape of the reference
// DHSession: one instance is created per authentication attempt and
// discarded afterward.
type DHSession struct {
	provider CryptoProvider

	priv, pub *big.Int
	state     AgreementState

	sharedSecret []byte
}

// New constructs a session, generating a local keypair over the fixed
// (p, g) parameters. provider may be nil to use DefaultCryptoProvider.
func New(provider CryptoProvider) (*DHSession, error) {
	if provider == nil {
		provider = DefaultCryptoProvider
	}

	priv, pub, err := provider.GenerateKeyPair(dhPrime, dhGenerator)
	if err != nil {
		return nil, err
	}

	return &DHSession{
		provider: provider,
		priv:     priv,
		pub:      pub,
		state:    Initialized,
	}, nil
}

// EncodedMaterial produces this session's PEM-wrapped DH parameters
// followed by its public value, hex-encoded between the BPUB/EPUB
// sentinels, ready to send to the peer.
func (s *DHSession) EncodedMaterial() (string, error) {
	der, err := toDER(dhPrime, dhGenerator)
	if err != nil {
		return "", err
	}

	params := toPEM(der, dhHeader, dhFooter)
	return params + "\n" + dhPubKeyHeader + s.pub.Text(16) + dhPubKeyFooter, nil
}

// Finalize ingests the peer's encoded material, verifies its (p, g)
// match ours, derives the shared secret, and advances to Finalized.
func (s *DHSession) Finalize(message string) error {
	delimitingIndex := strings.Index(message, dhPubKeyHeader)
	if delimitingIndex < 0 {
		return fmt.Errorf("%w: missing %s sentinel", ErrMalformed, dhPubKeyHeader)
	}

	paramsText := message[:delimitingIndex]
	pubSection := message[delimitingIndex:]

	der, err := fromPEM(paramsText, dhHeader, dhFooter)
	if err != nil {
		return err
	}

	peerP, peerG, err := fromDER(der)
	if err != nil {
		return err
	}
	if peerP.Cmp(dhPrime) != 0 || peerG.Cmp(dhGenerator) != 0 {
		return ErrParamMismatch
	}

	pubSection = strings.ReplaceAll(pubSection, "\n", "")
	pubSection = strings.TrimPrefix(pubSection, dhPubKeyHeader)
	pubSection = strings.TrimSuffix(pubSection, dhPubKeyFooter)

	peerY, ok := new(big.Int).SetString(pubSection, 16)
	if !ok {
		return fmt.Errorf("%w: invalid public value", ErrMalformed)
	}
	if peerY.Sign() <= 0 || peerY.Cmp(dhPrime) >= 0 {
		return ErrKeyRejected
	}

	s.sharedSecret = s.provider.SharedSecret(peerY, s.priv, dhPrime)
	s.state = Finalized
	return nil
}

// Decrypt decrypts ciphertext under cipherSpec (e.g.
// "Blowfish/CBC/PKCS5Padding" or "Blowfish/CBC/NoPadding") using the
// first blockSize bytes of the shared secret as the key and an all-zero
// IV, the same construction the reference implementation uses for
// authenticator payloads.
func (s *DHSession) Decrypt(cipherSpec, keySpec string, blockSize int, ciphertext []byte) ([]byte, error) {
	if s.state != Finalized {
		return nil, ErrNotFinalized
	}
	if blockSize <= 0 || blockSize > len(s.sharedSecret) {
		return nil, fmt.Errorf("%w: invalid block size %d", ErrBadBlockSize, blockSize)
	}
	if len(ciphertext) == 0 || len(ciphertext)%blockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d not a multiple of %d", ErrBadBlockSize, len(ciphertext), blockSize)
	}

	_, mode, padding, err := parseCipherSpec(cipherSpec)
	if err != nil {
		return nil, err
	}
	if mode != "CBC" {
		return nil, fmt.Errorf("%w: mode %s", ErrAlgorithmUnsupported, mode)
	}

	key := s.sharedSecret[:blockSize]
	block, err := s.provider.NewBlockCipher(keySpec, key)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, block.BlockSize())
	plaintext := make([]byte, len(ciphertext))
	cbc := cipher.NewCBCDecrypter(block, iv)
	cbc.CryptBlocks(plaintext, ciphertext)

	if padding == "PKCS5Padding" || padding == "PKCS7Padding" {
		return stripPKCS5Padding(plaintext, block.BlockSize())
	}
	return plaintext, nil
}

func parseCipherSpec(spec string) (name, mode, padding string, err error) {
	parts := strings.Split(spec, "/")
	switch len(parts) {
	case 3:
		return parts[0], parts[1], parts[2], nil
	case 1:
		return parts[0], "CBC", "NoPadding", nil
	default:
		return "", "", "", fmt.Errorf("%w: malformed cipher spec %q", ErrAlgorithmUnsupported, spec)
	}
}

func stripPKCS5Padding(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrBadPadding
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, ErrBadPadding
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, ErrBadPadding
		}
	}
	return data[:len(data)-padLen], nil
}

// SharedSecret returns the raw big-endian shared secret, available only
// once Finalize has succeeded.
func (s *DHSession) SharedSecret() ([]byte, error) {
	if s.state != Finalized {
		return nil, ErrNotFinalized
	}
	return s.sharedSecret, nil
}
