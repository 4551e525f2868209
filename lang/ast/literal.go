// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package ast

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/btcsuite/btcutil/base58"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/holiman/uint256"

	"github.com/probechain/go-probe-dsl/lang/diag"
	"github.com/probechain/go-probe-dsl/lang/sexpr"
	"github.com/probechain/go-probe-dsl/lang/source"
	"github.com/probechain/go-probe-dsl/lang/types"
)

// Literal is a constant leaf: (literal (<atom> <value>) <loc>).
type Literal struct {
	atom  string
	value sexpr.Encodable // nil for unit
	typ   types.Type
	loc   source.Location
}

func (*Literal) expressionNode() {}

// ValueType returns the type of the constant.
func (l *Literal) ValueType() types.Type { return l.typ }

// Atom returns the literal kind, e.g. "nat".
func (l *Literal) Atom() string { return l.atom }

// Location returns where the literal was built.
func (l *Literal) Location() source.Location { return l.loc }

func (l *Literal) Encode(e *sexpr.Encoder) {
	e.Open("literal")
	e.Open(l.atom)
	if l.value != nil {
		l.value.Encode(e)
	}
	e.Close()
	e.Location(l.loc)
	e.Close()
}

func (l *Literal) String() string { return sexpr.Sprint(l) }

func newLiteral(name string, value sexpr.Encodable, t types.Type, at []source.Location) *Literal {
	return &Literal{atom: name, value: value, typ: t, loc: source.Pick(at)}
}

type bigValue struct{ v *big.Int }

func (b bigValue) Encode(e *sexpr.Encoder) { e.Big(b.v) }

type uintValue uint64

func (u uintValue) Encode(e *sexpr.Encoder) { e.Uint(uint64(u)) }

// ---- Scalars ---------------------------------------------------------------

func Unit(at ...source.Location) *Literal {
	return newLiteral("unit", nil, types.Unit, at)
}

func Nat(v uint64, at ...source.Location) *Literal {
	return newLiteral("nat", uintValue(v), types.Nat, at)
}

// NatBig builds a nat from an arbitrary precision value. Negative values are
// rejected.
func NatBig(v *big.Int, at ...source.Location) (*Literal, error) {
	if v == nil || v.Sign() < 0 {
		return nil, diag.Newf(diag.InvalidLiteral, "nat", "natural number must be non-negative, got %v", v)
	}
	return newLiteral("nat", bigValue{new(big.Int).Set(v)}, types.Nat, at), nil
}

// NatU256 builds a nat from a 256-bit unsigned integer. A nil value is
// rejected.
func NatU256(v *uint256.Int, at ...source.Location) (*Literal, error) {
	if v == nil {
		return nil, diag.Newf(diag.InvalidLiteral, "nat", "missing value")
	}
	return newLiteral("nat", bigValue{v.ToBig()}, types.Nat, at), nil
}

func Int(v int64, at ...source.Location) *Literal {
	return newLiteral("int", number(v), types.Int, at)
}

// IntBig builds an int from an arbitrary precision value. A nil value is
// rejected.
func IntBig(v *big.Int, at ...source.Location) (*Literal, error) {
	if v == nil {
		return nil, diag.Newf(diag.InvalidLiteral, "int", "missing value")
	}
	return newLiteral("int", bigValue{new(big.Int).Set(v)}, types.Int, at), nil
}

func Mutez(v uint64, at ...source.Location) *Literal {
	return newLiteral("mutez", uintValue(v), types.Mutez, at)
}

// MutezU256 builds a mutez amount from a 256-bit unsigned integer. Amounts
// above the 63-bit protocol limit and nil values are rejected.
func MutezU256(v *uint256.Int, at ...source.Location) (*Literal, error) {
	if v == nil {
		return nil, diag.Newf(diag.InvalidLiteral, "mutez", "missing value")
	}
	if v.BitLen() > 63 {
		return nil, diag.Newf(diag.InvalidLiteral, "mutez", "amount %s exceeds the int64 range", v.ToBig())
	}
	return newLiteral("mutez", bigValue{v.ToBig()}, types.Mutez, at), nil
}

func Bool(v bool, at ...source.Location) *Literal {
	return newLiteral("bool", flag(v), types.Bool, at)
}

func String(s string, at ...source.Location) *Literal {
	return newLiteral("string", quoted(s), types.String, at)
}

// Bytes builds a bytes literal from hex text. A missing 0x prefix is added
// and the digits are lowercased. Text that is not hex is kept as given.
func Bytes(h string, at ...source.Location) *Literal {
	return newLiteral("bytes", atom(normalizeHex(h)), types.Bytes, at)
}

// BytesOf builds a bytes literal from raw bytes.
func BytesOf(b []byte, at ...source.Location) *Literal {
	return newLiteral("bytes", atom("0x"+hex.EncodeToString(b)), types.Bytes, at)
}

func Address(s string, at ...source.Location) *Literal {
	return newLiteral("address", quoted(s), types.Address, at)
}

// Timestamp builds a timestamp from seconds since the Unix epoch.
func Timestamp(secs int64, at ...source.Location) *Literal {
	return newLiteral("timestamp", number(secs), types.Timestamp, at)
}

// TimestampTime builds a timestamp from t, truncated to whole seconds.
func TimestampTime(t time.Time, at ...source.Location) *Literal {
	return Timestamp(t.Unix(), at...)
}

func ChainID(h string, at ...source.Location) *Literal {
	return newLiteral("chain_id_cst", atom(normalizeHex(h)), types.ChainID, at)
}

func Key(s string, at ...source.Location) *Literal {
	return newLiteral("key", quoted(s), types.Key, at)
}

func KeyHash(s string, at ...source.Location) *Literal {
	return newLiteral("key_hash", quoted(s), types.KeyHash, at)
}

func Signature(s string, at ...source.Location) *Literal {
	return newLiteral("signature", quoted(s), types.Signature, at)
}

func BLS12381G1(h string, at ...source.Location) *Literal {
	return newLiteral("bls12_381_g1", atom(normalizeHex(h)), types.BLS12381G1, at)
}

func BLS12381G2(h string, at ...source.Location) *Literal {
	return newLiteral("bls12_381_g2", atom(normalizeHex(h)), types.BLS12381G2, at)
}

func BLS12381Fr(h string, at ...source.Location) *Literal {
	return newLiteral("bls12_381_fr", atom(normalizeHex(h)), types.BLS12381Fr, at)
}

func normalizeHex(h string) string {
	if n, ok := sexpr.NormalizeHex(h); ok {
		return n
	}
	return h
}

// ---- Checked constructors --------------------------------------------------

// Address prefixes and their decoded payload prefix bytes. Every address is
// a 3 byte prefix, a 20 byte hash and a 4 byte checksum.
var addressPrefixes = map[string][]byte{
	"tz1": {6, 161, 159},
	"tz2": {6, 161, 161},
	"tz3": {6, 161, 164},
	"KT1": {2, 90, 121},
}

const addressPayloadLen = 3 + 20

// AddressChecked is like Address but validates the base58check encoding of
// implicit (tz1, tz2, tz3) and originated (KT1) addresses. An optional
// %entrypoint suffix is allowed.
func AddressChecked(s string, at ...source.Location) (*Literal, error) {
	addr := s
	if i := strings.IndexByte(s, '%'); i >= 0 {
		if i == len(s)-1 {
			return nil, diag.Newf(diag.InvalidLiteral, s, "empty entrypoint suffix")
		}
		addr = s[:i]
	}
	if len(addr) < 3 {
		return nil, diag.Newf(diag.InvalidLiteral, s, "address too short")
	}
	prefix, ok := addressPrefixes[addr[:3]]
	if !ok {
		return nil, diag.Newf(diag.InvalidLiteral, s, "unknown address prefix %q", addr[:3])
	}
	if err := checkBase58(addr, prefix, addressPayloadLen); err != nil {
		return nil, diag.Newf(diag.InvalidLiteral, s, "%v", err)
	}
	return Address(s, at...), nil
}

// BLS12381G1Checked is like BLS12381G1 but requires h to be a compressed or
// uncompressed point on the curve.
func BLS12381G1Checked(h string, at ...source.Location) (*Literal, error) {
	n, ok := sexpr.NormalizeHex(h)
	if !ok {
		return nil, diag.Newf(diag.InvalidLiteral, h, "not hex")
	}
	raw, err := hex.DecodeString(n[2:])
	if err != nil {
		return nil, diag.Newf(diag.InvalidLiteral, h, "%v", err)
	}
	var p bls12381.G1Affine
	if _, err := p.SetBytes(raw); err != nil {
		return nil, diag.Newf(diag.InvalidLiteral, h, "invalid G1 point: %v", err)
	}
	return newLiteral("bls12_381_g1", atom(n), types.BLS12381G1, at), nil
}

var (
	errPayloadLength = errors.New("bad base58 payload length")
	errPayloadPrefix = errors.New("payload prefix does not match")
	errChecksum      = errors.New("checksum mismatch")
)

// checkBase58 verifies a base58check string whose decoded payload starts
// with prefix and is n bytes long before the 4 byte checksum.
func checkBase58(s string, prefix []byte, n int) error {
	raw := base58.Decode(s)
	if len(raw) != n+4 {
		return errPayloadLength
	}
	payload, sum := raw[:n], raw[n:]
	for i, b := range prefix {
		if payload[i] != b {
			return errPayloadPrefix
		}
	}
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	for i := 0; i < 4; i++ {
		if second[i] != sum[i] {
			return errChecksum
		}
	}
	return nil
}

// EncodeAddress builds a base58check address from a prefix (tz1, tz2, tz3
// or KT1) and a 20 byte hash.
func EncodeAddress(prefix string, hash []byte) (string, error) {
	p, ok := addressPrefixes[prefix]
	if !ok || len(hash) != 20 {
		return "", diag.Newf(diag.InvalidLiteral, prefix, "want a known prefix and a 20 byte hash")
	}
	payload := append(append([]byte{}, p...), hash...)
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return base58.Encode(append(payload, second[:4]...)), nil
}
