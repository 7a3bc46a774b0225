package gsi

import (
	"crypto/cipher"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blowfish"
)

func TestDHSessionAgreesOnSharedSecret(t *testing.T) {
	a, err := New(nil)
	require.NoError(t, err)
	b, err := New(nil)
	require.NoError(t, err)

	aMaterial, err := a.EncodedMaterial()
	require.NoError(t, err)
	bMaterial, err := b.EncodedMaterial()
	require.NoError(t, err)

	require.NoError(t, a.Finalize(bMaterial))
	require.NoError(t, b.Finalize(aMaterial))

	aSecret, err := a.SharedSecret()
	require.NoError(t, err)
	bSecret, err := b.SharedSecret()
	require.NoError(t, err)

	assert.Equal(t, aSecret, bSecret)
}

// TestDHSessionDecryptRecoversPlaintext mirrors the handshake scenario
// where one side encrypts a short authenticator token and the other
// recovers it after key agreement.
func TestDHSessionDecryptRecoversPlaintext(t *testing.T) {
	a, err := New(nil)
	require.NoError(t, err)
	b, err := New(nil)
	require.NoError(t, err)

	aMaterial, err := a.EncodedMaterial()
	require.NoError(t, err)
	bMaterial, err := b.EncodedMaterial()
	require.NoError(t, err)

	require.NoError(t, a.Finalize(bMaterial))
	require.NoError(t, b.Finalize(aMaterial))

	bSecret, err := b.SharedSecret()
	require.NoError(t, err)

	plaintext := []byte("xroot-ok") // exactly one 8-byte Blowfish block
	block, err := blowfish.NewCipher(bSecret[:8])
	require.NoError(t, err)

	ciphertext := make([]byte, len(plaintext))
	cbc := cipher.NewCBCEncrypter(block, make([]byte, block.BlockSize()))
	cbc.CryptBlocks(ciphertext, plaintext)

	recovered, err := a.Decrypt("Blowfish/CBC/NoPadding", "Blowfish", 8, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, recovered)
}

func TestDHSessionDecryptBeforeFinalizeFails(t *testing.T) {
	a, err := New(nil)
	require.NoError(t, err)

	_, err = a.Decrypt("Blowfish/CBC/NoPadding", "Blowfish", 8, make([]byte, 8))
	assert.ErrorIs(t, err, ErrNotFinalized)
}

func TestDHSessionFinalizeRejectsGarbage(t *testing.T) {
	a, err := New(nil)
	require.NoError(t, err)

	err = a.Finalize("not a valid handshake message")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDHSessionFinalizeRejectsParamMismatch(t *testing.T) {
	a, err := New(nil)
	require.NoError(t, err)

	otherPrime := new(big.Int).Add(dhPrime, big.NewInt(2))
	der, err := toDER(otherPrime, dhGenerator)
	require.NoError(t, err)

	forged := toPEM(der, dhHeader, dhFooter) + "\n" + dhPubKeyHeader + "ab" + dhPubKeyFooter

	err = a.Finalize(forged)
	assert.ErrorIs(t, err, ErrParamMismatch)
}
