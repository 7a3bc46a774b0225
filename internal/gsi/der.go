package gsi

import (
	"encoding/asn1"
	"fmt"
	"math/big"
)

// dhParameterASN1 is SEQUENCE { INTEGER p, INTEGER g, INTEGER l } where l
// is the private-value length (here always bitlen(p)), mirroring Bouncy
// Castle's DHParameter structure used by the reference implementation.
// encoding/asn1 is used rather than a third-party ASN.1 package: it is
// the same library crypto/x509 and the rest of the Go ecosystem reach for
// when they need DER, so there is no idiomatic alternative to displace.
type dhParameterASN1 struct {
	P *big.Int
	G *big.Int
	L int
}

// toDER encodes (p, g) as SEQUENCE{INTEGER p, INTEGER g, INTEGER bitlen(p)}.
func toDER(p, g *big.Int) ([]byte, error) {
	return asn1.Marshal(dhParameterASN1{P: p, G: g, L: p.BitLen()})
}

// fromDER decodes a DH parameter DER sequence back into (p, g), ignoring
// the encoded private-value length (it is redundant with bitlen(p) and
// not otherwise used).
func fromDER(der []byte) (p, g *big.Int, err error) {
	var params dhParameterASN1
	rest, err := asn1.Unmarshal(der, &params)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(rest) != 0 {
		return nil, nil, fmt.Errorf("%w: trailing DER data", ErrMalformed)
	}
	if params.P == nil || params.G == nil {
		return nil, nil, fmt.Errorf("%w: missing DH parameter", ErrMalformed)
	}
	return params.P, params.G, nil
}
