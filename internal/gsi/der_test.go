package gsi

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDERRoundTrip(t *testing.T) {
	p := new(big.Int).Set(dhPrime)
	g := new(big.Int).Set(dhGenerator)

	der, err := toDER(p, g)
	require.NoError(t, err)

	gotP, gotG, err := fromDER(der)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Cmp(gotP))
	assert.Equal(t, 0, g.Cmp(gotG))
}

func TestFromDERRejectsGarbage(t *testing.T) {
	_, _, err := fromDER([]byte{0x00, 0x01, 0x02})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFromDERRejectsTrailingData(t *testing.T) {
	der, err := toDER(dhPrime, dhGenerator)
	require.NoError(t, err)

	_, _, err = fromDER(append(der, 0xFF))
	assert.ErrorIs(t, err, ErrMalformed)
}
