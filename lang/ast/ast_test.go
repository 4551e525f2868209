// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package ast

import (
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"

	"github.com/probechain/go-probe-dsl/lang/diag"
	"github.com/probechain/go-probe-dsl/lang/sexpr"
	"github.com/probechain/go-probe-dsl/lang/source"
	"github.com/probechain/go-probe-dsl/lang/types"
)

var here = source.At("counter.go", 12)

func serialize(t *testing.T, n sexpr.Encodable) string {
	t.Helper()
	s, err := sexpr.Serialize(n)
	require.NoError(t, err)
	return s
}

func golden(t *testing.T, want, got string) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("serialization mismatch (-want +got):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// Literals
// ---------------------------------------------------------------------------

func TestLiteralSerialize(t *testing.T) {
	big1, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	natBig, err := NatBig(big1, here)
	require.NoError(t, err)
	natU256, err := NatU256(new(uint256.Int).SetUint64(42))
	require.NoError(t, err)
	intBig, err := IntBig(big.NewInt(-9))
	require.NoError(t, err)

	tests := []struct {
		lit  *Literal
		want string
		typ  types.Type
	}{
		{Unit(here), `(literal (unit) ("counter.go" 12))`, types.Unit},
		{Nat(1), `(literal (nat 1) ("" -1))`, types.Nat},
		{natBig, `(literal (nat 123456789012345678901234567890) ("counter.go" 12))`, types.Nat},
		{natU256, `(literal (nat 42) ("" -1))`, types.Nat},
		{Int(-7, here), `(literal (int -7) ("counter.go" 12))`, types.Int},
		{intBig, `(literal (int -9) ("" -1))`, types.Int},
		{Mutez(1000000), `(literal (mutez 1000000) ("" -1))`, types.Mutez},
		{Bool(true), `(literal (bool True) ("" -1))`, types.Bool},
		{Bool(false), `(literal (bool False) ("" -1))`, types.Bool},
		{String("say \"hi\"\n"), `(literal (string "say \"hi\"\n") ("" -1))`, types.String},
		{Bytes("0xDEADbeef"), `(literal (bytes 0xdeadbeef) ("" -1))`, types.Bytes},
		{Bytes("00ff"), `(literal (bytes 0x00ff) ("" -1))`, types.Bytes},
		{BytesOf([]byte{1, 2}), `(literal (bytes 0x0102) ("" -1))`, types.Bytes},
		{Address("KT1TezoooozzSmartPyzzSTATiCzzzwwBFA1"), `(literal (address "KT1TezoooozzSmartPyzzSTATiCzzzwwBFA1") ("" -1))`, types.Address},
		{Timestamp(1700000000), `(literal (timestamp 1700000000) ("" -1))`, types.Timestamp},
		{TimestampTime(time.Unix(60, 5e8)), `(literal (timestamp 60) ("" -1))`, types.Timestamp},
		{ChainID("NetXdQprcVkpaWU"), `(literal (chain_id_cst NetXdQprcVkpaWU) ("" -1))`, types.ChainID},
		{ChainID("7a06a770"), `(literal (chain_id_cst 0x7a06a770) ("" -1))`, types.ChainID},
		{Key("edpk"), `(literal (key "edpk") ("" -1))`, types.Key},
		{KeyHash("tz1"), `(literal (key_hash "tz1") ("" -1))`, types.KeyHash},
		{Signature("edsig"), `(literal (signature "edsig") ("" -1))`, types.Signature},
		{BLS12381Fr("0x01"), `(literal (bls12_381_fr 0x01) ("" -1))`, types.BLS12381Fr},
	}
	for _, tt := range tests {
		got := serialize(t, tt.lit)
		golden(t, tt.want, got)
		assert.Equal(t, got, serialize(t, tt.lit), "serialization must be repeatable")
		assert.True(t, types.Equal(tt.typ, tt.lit.ValueType()), "value type of %s", got)
	}
}

// Every literal parses back to (literal (<atom> <value>) <loc>) with the same
// atom, and printing the parsed tree reproduces the text.
func TestLiteralParseBack(t *testing.T) {
	lits := []*Literal{
		Unit(), Nat(0), Int(-1), Mutez(5), Bool(true), String("a b"),
		Bytes("ab"), Address("tz1x"), Timestamp(-3), Key("k"), BLS12381G2("0x00"),
	}
	for _, l := range lits {
		text := serialize(t, l)
		node, err := sexpr.ParseOne(text)
		require.NoError(t, err, text)
		assert.Equal(t, text, node.String())

		list, ok := node.(*sexpr.List)
		require.True(t, ok)
		require.Equal(t, "literal", list.Head())
		require.Len(t, list.Items, 3)
		inner := list.Items[1].(*sexpr.List)
		assert.Equal(t, l.Atom(), inner.Head())
	}
}

func TestNatBigRejectsNegative(t *testing.T) {
	_, err := NatBig(big.NewInt(-1))
	require.True(t, errors.Is(err, diag.ErrInvalidLiteral))
}

func TestBigLiteralsRejectNil(t *testing.T) {
	_, err := NatBig(nil)
	require.True(t, errors.Is(err, diag.ErrInvalidLiteral))
	_, err = NatU256(nil)
	require.True(t, errors.Is(err, diag.ErrInvalidLiteral))
	_, err = IntBig(nil)
	require.True(t, errors.Is(err, diag.ErrInvalidLiteral))
	_, err = MutezU256(nil)
	require.True(t, errors.Is(err, diag.ErrInvalidLiteral))
}

func TestMutezU256Range(t *testing.T) {
	l, err := MutezU256(new(uint256.Int).SetUint64(7))
	require.NoError(t, err)
	golden(t, `(literal (mutez 7) ("" -1))`, serialize(t, l))

	huge := new(uint256.Int).Lsh(new(uint256.Int).SetOne(), 64)
	_, err = MutezU256(huge)
	require.True(t, errors.Is(err, diag.ErrInvalidLiteral))
}

func TestAddressChecked(t *testing.T) {
	hash := make([]byte, 20)
	for i := range hash {
		hash[i] = byte(i * 7)
	}
	for _, prefix := range []string{"tz1", "tz2", "tz3", "KT1"} {
		addr, err := EncodeAddress(prefix, hash)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(addr, prefix), "%s does not start with %s", addr, prefix)

		l, err := AddressChecked(addr, here)
		require.NoError(t, err, addr)
		golden(t, `(literal (address "`+addr+`") ("counter.go" 12))`, serialize(t, l))

		_, err = AddressChecked(addr + "%transfer")
		require.NoError(t, err)
	}

	good, _ := EncodeAddress("tz1", hash)
	tampered := good[:len(good)-1] + flipBase58(good[len(good)-1])
	bad := []string{"", "tz", "tz9abc", tampered, good + "%", "KT1" + good[3:]}
	for _, s := range bad {
		_, err := AddressChecked(s)
		assert.True(t, errors.Is(err, diag.ErrInvalidLiteral), "AddressChecked(%q) = %v", s, err)
	}
}

func flipBase58(c byte) string {
	if c == '2' {
		return "3"
	}
	return "2"
}

func TestBLS12381G1Checked(t *testing.T) {
	_, _, g1, _ := bls12381.Generators()
	compressed := g1.Bytes()
	h := hex.EncodeToString(compressed[:])

	l, err := BLS12381G1Checked(strings.ToUpper(h))
	require.NoError(t, err)
	golden(t, `(literal (bls12_381_g1 0x`+h+`) ("" -1))`, serialize(t, l))

	for _, bad := range []string{"zz", strings.Repeat("11", 48), "0x"} {
		_, err := BLS12381G1Checked(bad)
		assert.True(t, errors.Is(err, diag.ErrInvalidLiteral), "BLS12381G1Checked(%q) = %v", bad, err)
	}
}

// ---------------------------------------------------------------------------
// Composite literals
// ---------------------------------------------------------------------------

func TestCollections(t *testing.T) {
	golden(t, `(list ("" -1) (literal (nat 1) ("" -1)) (literal (nat 2) ("" -1)))`,
		serialize(t, List(types.Nat, []Expression{Nat(1), Nat(2)})))
	golden(t, `(set ("counter.go" 12))`, serialize(t, Set(types.Int, nil, here)))

	m := Map(types.Nat, types.String, []MapEntry{{Nat(1), String("a")}}, here)
	golden(t, `(map ("counter.go" 12) ((literal (nat 1) ("" -1)) (literal (string "a") ("" -1))))`, serialize(t, m))
	assert.Equal(t, `(map "nat" "string")`, TypeOf(m).String())

	golden(t, `(big_map ("" -1))`, serialize(t, BigMap(types.Address, types.Nat, nil)))

	golden(t, `(tuple ("" -1) (literal (nat 1) ("" -1)) (literal (bool True) ("" -1)))`,
		serialize(t, Pair(Nat(1), Bool(true))))
	assert.Equal(t, `(pair "nat" "bool")`, TypeOf(Pair(Nat(1), Bool(true))).String())
}

func TestOptionsAndVariants(t *testing.T) {
	golden(t, `(variant "Some" (literal (nat 3) ("" -1)) ("" -1))`, serialize(t, Some(Nat(3))))
	assert.Equal(t, `(option "nat")`, TypeOf(Some(Nat(3))).String())

	golden(t, `(variant "None" (literal (unit) ("counter.go" 12)) ("counter.go" 12))`,
		serialize(t, None(types.Address, here)))

	golden(t, `(variant "Reset" (literal (unit) ("" -1)) ("" -1))`,
		serialize(t, Variant("Reset", Unit(), nil)))
}

func TestRecordLiteral(t *testing.T) {
	r, err := Record([]RecordField{
		{"b", Nat(1)},
		{"a", String("x")},
		{"c", Bool(true)},
	}, here)
	require.NoError(t, err)
	golden(t,
		`(record ("counter.go" 12) (b (literal (nat 1) ("" -1))) (a (literal (string "x") ("" -1))) (c (literal (bool True) ("" -1))))`,
		serialize(t, r))
	golden(t,
		`(record ((a "string") (b "nat") (c "bool")) (Some (("b") (("a") ("c")))) ("counter.go" 12))`,
		serialize(t, r.ValueType()))

	_, err = Record([]RecordField{{"x", GetVariable("y")}})
	require.True(t, errors.Is(err, diag.ErrUnresolvedFieldType), "got %v", err)

	_, err = Record([]RecordField{{"x", nil}})
	require.True(t, errors.Is(err, diag.ErrUnresolvedFieldType))

	for _, name := range []string{"", "a b", "c)"} {
		_, err = Record([]RecordField{{name, Nat(1)}})
		require.True(t, errors.Is(err, diag.ErrInvalidName), "%q: got %v", name, err)
	}

	// A typed child through the accessor resolves.
	_, err = Record([]RecordField{{"x", Access(Nat(1))}})
	require.NoError(t, err)
}

func TestLambdaIDs(t *testing.T) {
	ids := NewIDAllocator()
	first := Lambda(ids, LambdaSpec{Input: types.Nat, Output: types.Nat}, func(arg Expression) []Statement {
		return []Statement{Return(Add(arg, Nat(1)))}
	}, here)
	second := Lambda(ids, LambdaSpec{Arg: "p", WithStorage: true}, nil)
	assert.Less(t, first.ID(), second.ID())

	golden(t,
		`(lambda 0 False False "lparams" ("counter.go" 12) ((result (add (lambdaParams 0 "lparams" ("counter.go" 12)) (literal (nat 1) ("" -1))) ("" -1))))`,
		serialize(t, first))
	golden(t, `(lambda 1 True False "p" ("" -1) ())`, serialize(t, second))
	assert.Equal(t, `(lambda "nat" "nat")`, first.ValueType().String())
	assert.True(t, types.IsUnknown(second.ValueType()))
}

func TestIDAllocatorConcurrent(t *testing.T) {
	ids := NewIDAllocator()
	const n = 64
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[uint64]bool)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := ids.Next()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
	assert.Equal(t, uint64(n), ids.Peek())
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func TestExpressions(t *testing.T) {
	x := GetVariable("x")
	tests := []struct {
		e    Expression
		want string
	}{
		{x, `(getLocal "x")`},
		{Storage(), `(data)`},
		{Sender(), `(sender)`},
		{SelfAddress(), `(self_address)`},
		{ChainIDValue(), `(chain_id)`},
		{TotalVotingPower(), `(total_voting_power)`},
		{Eq(x, x), `(eq (getLocal "x") (getLocal "x"))`},
		{Not(Lt(x, x)), `(not (lt (getLocal "x") (getLocal "x")))`},
		{IsNat(Sub(x, x)), `(isNat (sub (getLocal "x") (getLocal "x")))`},
		{Lsl(x, x), `(lsl (getLocal "x") (getLocal "x"))`},
		{Property(x, "owner", here), `(attr (getLocal "x") "owner" ("counter.go" 12))`},
		{MapGet(Storage(), x), `(getItem (data) (getLocal "x") ("" -1))`},
		{MapGetOr(Storage(), x, Nat(0)), `(getItemDefault (data) (getLocal "x") (literal (nat 0) ("" -1)) ("" -1))`},
		{Contains(Storage(), x), `(contains (data) (getLocal "x") ("" -1))`},
		{Size(x), `(size (getLocal "x") ("" -1))`},
		{Keys(x), `(keys (getLocal "x") ("" -1))`},
		{IsSome(x), `(isVariant (getLocal "x") "Some" ("" -1))`},
		{OpenSome(x, nil), `(openVariant (getLocal "x") "Some" None ("" -1))`},
		{OpenVariant(x, "A", String("no")), `(openVariant (getLocal "x") "A" (literal (string "no") ("" -1)) ("" -1))`},
		{First(x), `(first (getLocal "x") ("" -1))`},
		{Unpack(x, types.Nat), `(unpack (getLocal "x") "nat" ("" -1))`},
		{Cast(x, types.List(types.Int)), `(type_annotation (getLocal "x") (list "int") ("" -1))`},
		{Blake2b(Pack(x)), `(blake2b (pack (getLocal "x") ("" -1)) ("" -1))`},
		{CheckSignature(x, x, x), `(check_signature (getLocal "x") (getLocal "x") (getLocal "x") ("" -1))`},
		{Concat(x), `(concat ("" -1) (getLocal "x"))`},
		{Slice(Nat(0), Nat(2), x), `(slice (literal (nat 0) ("" -1)) (literal (nat 2) ("" -1)) (getLocal "x") ("" -1))`},
		{GetContract(x, types.Nat, "deposit"), `(contract "deposit" "nat" (getLocal "x") ("" -1))`},
		{GetContract(x, types.Unit, ""), `(contract None "unit" (getLocal "x") ("" -1))`},
		{ImplicitAccount(x), `(implicit_account (getLocal "x") ("" -1))`},
		{CallLambda(x, Nat(1)), `(call_lambda (getLocal "x") (literal (nat 1) ("" -1)) ("" -1))`},
	}
	for _, tt := range tests {
		golden(t, tt.want, serialize(t, tt.e))
		assert.Equal(t, tt.want, tt.e.String())
	}
	assert.Equal(t, `(option "nat")`, TypeOf(Unpack(x, types.Nat)).String())
}

func TestAccessor(t *testing.T) {
	a := Access(Storage()).Get("ledger").At(Sender()).Get("balance", here)
	golden(t,
		`(attr (getItem (attr (data) "ledger" ("" -1)) (sender) ("" -1)) "balance" ("counter.go" 12))`,
		serialize(t, a))

	// The wrapped node stays reachable and wrapping twice is a no-op.
	assert.Equal(t, `(data)`, Access(Access(Storage())).Unwrap().String())

	// An Accessor is itself an Expression.
	var e Expression = a
	golden(t, `(size `+a.String()+` ("" -1))`, serialize(t, Size(e)))
}

func TestOperations(t *testing.T) {
	tr := Transfer(Unit(), Mutez(5), GetVariable("dest"), here)
	golden(t,
		`(transfer (literal (unit) ("" -1)) (literal (mutez 5) ("" -1)) (getLocal "dest") ("counter.go" 12))`,
		serialize(t, tr))
	golden(t,
		`(set (operations) (cons (transfer (literal (unit) ("" -1)) (literal (mutez 5) ("" -1)) (getLocal "dest") ("counter.go" 12)) (operations) ("counter.go" 12)) ("counter.go" 12))`,
		serialize(t, tr.Send()))
	assert.Equal(t, types.Operation, TypeOf(tr))

	golden(t, `(set_delegate (variant "None" (literal (unit) ("" -1)) ("" -1)) ("" -1))`,
		serialize(t, SetDelegate(None(types.KeyHash))))

	cc := CreateContract(Block{}, None(types.KeyHash), Mutez(0), Unit())
	assert.True(t, strings.HasPrefix(serialize(t, cc), `(create_contract (contract ()) (variant "None"`))
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func TestRequireScenario(t *testing.T) {
	s := Require(Eq(GetVariable("x"), Nat(1)), String("err"))
	golden(t,
		`(verify (eq (getLocal "x") (literal (nat 1) ("" -1))) (literal (string "err") ("" -1)) ("" -1))`,
		serialize(t, s))
	golden(t, `(verify (getLocal "ok") ("" -1))`, serialize(t, Require(GetVariable("ok"), nil)))
}

func TestSimpleStatements(t *testing.T) {
	x := GetVariable("x")
	tests := []struct {
		s    Statement
		want string
	}{
		{SetValue(Storage(), x), `(set (data) (getLocal "x") ("" -1))`},
		{DefineLocal("n", Nat(0), true), `(defineLocal "n" (literal (nat 0) ("" -1)) True ("" -1))`},
		{DefineLocal("k", x, false, here), `(defineLocal "k" (getLocal "x") False ("counter.go" 12))`},
		{Return(x), `(result (getLocal "x") ("" -1))`},
		{FailWith(String("no")), `(failwith (literal (string "no") ("" -1)) ("" -1))`},
		{SetType(x, types.Nat), `(set_type (getLocal "x") "nat" ("" -1))`},
		{SetMapEntry(Storage(), x, Nat(1)), `(set (getItem (data) (getLocal "x") ("" -1)) (literal (nat 1) ("" -1)) ("" -1))`},
		{DeleteMapEntry(Storage(), x), `(delItem (data) (getLocal "x") ("" -1))`},
		{AddToSet(Storage(), x), `(updateSet (data) (getLocal "x") True ("" -1))`},
		{RemoveFromSet(Storage(), x), `(updateSet (data) (getLocal "x") False ("" -1))`},
	}
	for _, tt := range tests {
		golden(t, tt.want, serialize(t, tt.s))
	}
	golden(t, `()`, serialize(t, Block(nil)))
}

func TestIfStatement(t *testing.T) {
	cond := GetVariable("c")
	full := If(cond, here).Then(FailWith(Nat(1))).Else(Return(Nat(2)))
	golden(t,
		`(ifBlock (getLocal "c") ((failwith (literal (nat 1) ("" -1)) ("" -1))) ("counter.go" 12)) (elseBlock ((result (literal (nat 2) ("" -1)) ("" -1))))`,
		serialize(t, full))

	noElse := If(cond).Then()
	golden(t, `(ifBlock (getLocal "c") () ("" -1)) (elseBlock ())`, serialize(t, noElse))
	golden(t, serialize(t, noElse), serialize(t, noElse))

	_, err := If(cond).Else().Build()
	require.True(t, errors.Is(err, diag.ErrIncompleteStatement))

	twice := If(cond).Then().Then()
	_, err = sexpr.Serialize(twice)
	require.True(t, errors.Is(err, diag.ErrIncompleteStatement))

	// Inside a block, the if and its else are siblings.
	golden(t, `((ifBlock (getLocal "c") () ("" -1)) (elseBlock ()))`, serialize(t, Block{noElse}))
}

func TestLoops(t *testing.T) {
	loop := ForEachOf(GetVariable("xs"), here).Named("x").Do(func(it Expression) []Statement {
		return []Statement{SetValue(Storage(), Add(Storage(), it))}
	})
	golden(t,
		`(forGroup "x" (getLocal "xs") ((set (data) (add (data) (getLocal "x")) ("" -1))) ("counter.go" 12))`,
		serialize(t, loop))

	r := For(Nat(0), Nat(10), Nat(2)).Named("i").Do(func(Expression) []Statement { return nil })
	golden(t,
		`(forGroup "i" (range (literal (nat 0) ("" -1)) (literal (nat 10) ("" -1)) (literal (nat 2) ("" -1)) ("" -1)) () ("" -1))`,
		serialize(t, r))

	w := While(Lt(GetVariable("i"), Nat(3))).Do(func() []Statement { return nil })
	golden(t, `(whileBlock (lt (getLocal "i") (literal (nat 3) ("" -1))) () ("" -1))`, serialize(t, w))
	assert.True(t, strings.HasPrefix(w.Name(), "__while_"))
}

func TestLoopWithoutBody(t *testing.T) {
	_, err := ForEachOf(GetVariable("xs")).Build()
	require.True(t, errors.Is(err, diag.ErrIncompleteStatement))

	_, err = sexpr.Serialize(While(Bool(true)))
	require.True(t, errors.Is(err, diag.ErrIncompleteStatement))

	// The failure propagates through enclosing blocks.
	_, err = sexpr.Serialize(Block{If(Bool(true)).Then(While(Bool(true)))})
	require.True(t, errors.Is(err, diag.ErrIncompleteStatement))
}

func TestNestedLoopNames(t *testing.T) {
	var inner *ForStatement
	outer := ForEachOf(GetVariable("a")).Do(func(Expression) []Statement {
		inner = ForEachOf(GetVariable("b")).Do(func(Expression) []Statement { return nil })
		return []Statement{inner}
	})
	assert.NotEqual(t, outer.Name(), inner.Name())
	assert.True(t, strings.HasPrefix(outer.Name(), "__for_"))
}

func TestMatchVariant(t *testing.T) {
	m := MatchVariant(GetVariable("action"), here)
	m.Case("Add", func(arg Expression) []Statement {
		return []Statement{SetValue(Storage(), Add(Storage(), arg))}
	}).Case("Reset", func(Expression) []Statement {
		return []Statement{SetValue(Storage(), Nat(0))}
	})
	name := m.Name()
	require.True(t, strings.HasPrefix(name, "__match_"))
	golden(t,
		`(match_cases (getLocal "action") "`+name+`" ((case "Add" ((set (data) (add (data) (variant_arg "`+name+`")) ("" -1)))) (case "Reset" ((set (data) (literal (nat 0) ("" -1)) ("" -1))))) ("counter.go" 12))`,
		serialize(t, m))

	_, err := MatchVariant(GetVariable("v")).Build()
	require.True(t, errors.Is(err, diag.ErrIncompleteStatement))

	dup := MatchVariant(GetVariable("v")).
		Case("A", func(Expression) []Statement { return nil }).
		Case("A", func(Expression) []Statement { return nil })
	_, err = dup.Build()
	require.True(t, errors.Is(err, diag.ErrIncompleteStatement))
}
