// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package samples

import (
	"github.com/probechain/go-probe-dsl/lang/ast"
	"github.com/probechain/go-probe-dsl/lang/contract"
	"github.com/probechain/go-probe-dsl/lang/types"
)

const (
	// AuctionOwner receives the proceeds of the auction sample.
	AuctionOwner = "tz1aSkwEot3L2kmUvcoxzjMomb9mvBNuzFK6"
	// AuctionDeadline is the closing time of the auction sample.
	AuctionDeadline = 1735689600 // 2025-01-01T00:00:00Z

	auctionFeePercent = 2
)

func init() {
	Register(Sample{
		Name:        "auction",
		Description: "english auction with refunds, fee lambda and originated counters",
		Build:       buildAuction,
	})
}

var auctionStorageType = types.MustRecord([]types.Field{
	field("owner", types.Address),
	field("bidder", types.Option(types.Address)),
	field("bid", types.Mutez),
	field("deadline", types.Timestamp),
	field("closed", types.Bool),
}, types.WithLayout(types.MustParseLayout([]interface{}{
	[]string{"owner", "bidder"},
	[]interface{}{"bid", []string{"deadline", "closed"}},
})))

func buildAuction() (*contract.Contract, error) {
	storage, err := ast.Record([]ast.RecordField{
		{Name: "owner", Value: ast.Address(AuctionOwner)},
		{Name: "bidder", Value: ast.None(types.Address)},
		{Name: "bid", Value: ast.Mutez(0)},
		{Name: "deadline", Value: ast.Timestamp(AuctionDeadline)},
		{Name: "closed", Value: ast.Bool(false)},
	})
	if err != nil {
		return nil, err
	}
	c := contract.New().
		SetStorageType(auctionStorageType).
		SetStorage(storage).
		SetBalance(ast.Mutez(0))

	st := ast.Access(ast.Storage())
	pay := func(to, amount ast.Expression) ast.Statement {
		target := ast.OpenSome(ast.GetContract(to, types.Unit, ""), ast.String("not an implicit account"))
		return ast.Transfer(ast.Unit(), amount, target).Send()
	}

	// fee computes the house cut of a winning bid.
	fee := ast.Lambda(c.IDs(), ast.LambdaSpec{Arg: "amount", Input: types.Mutez, Output: types.Mutez},
		func(amount ast.Expression) []ast.Statement {
			cut := ast.EDiv(ast.Mul(amount, ast.Nat(auctionFeePercent)), ast.Nat(100))
			return []ast.Statement{ast.Return(ast.First(ast.OpenSome(cut, nil)))}
		})

	bid := contract.NewEntryPoint("bid")
	if err := bid.Code(func(ast.Accessor) []ast.Statement {
		refund := ast.If(ast.IsSome(st.Get("bidder"))).
			Then(pay(ast.OpenSome(st.Get("bidder"), nil), st.Get("bid")))
		return []ast.Statement{
			ast.Require(ast.Not(st.Get("closed")), ast.String("closed")),
			ast.Require(ast.Lt(ast.Now(), st.Get("deadline")), ast.String("auction over")),
			ast.Require(ast.Gt(ast.Amount(), st.Get("bid")), ast.String("bid too low")),
			refund,
			ast.SetValue(st.Get("bidder"), ast.Some(ast.Sender())),
			ast.SetValue(st.Get("bid"), ast.Amount()),
		}
	}); err != nil {
		return nil, err
	}

	closeAuction := contract.NewEntryPoint("close")
	if err := closeAuction.Code(func(ast.Accessor) []ast.Statement {
		cut := ast.GetVariable("cut")
		return []ast.Statement{
			ast.Require(ast.Eq(ast.Sender(), st.Get("owner")), ast.String("not owner")),
			ast.Require(ast.Ge(ast.Now(), st.Get("deadline")), ast.String("auction running")),
			ast.DefineLocal("cut", ast.CallLambda(fee, st.Get("bid")), false),
			ast.If(ast.Gt(st.Get("bid"), ast.Mutez(0))).
				Then(pay(st.Get("owner"), ast.Sub(st.Get("bid"), cut))).
				Else(ast.FailWith(ast.String("no bids"))),
			ast.SetValue(st.Get("closed"), ast.Bool(true)),
		}
	}); err != nil {
		return nil, err
	}

	delegate := contract.NewEntryPoint("delegate").Input(types.Option(types.KeyHash))
	if err := delegate.Code(func(p ast.Accessor) []ast.Statement {
		return []ast.Statement{
			ast.Require(ast.Eq(ast.Sender(), st.Get("owner")), ast.String("not owner")),
			ast.SetDelegate(p).Send(),
		}
	}); err != nil {
		return nil, err
	}

	// spawnCounters originates n fresh counters, one per loop iteration.
	counter, err := counterOn(c.Child())
	if err != nil {
		return nil, err
	}
	spawn := contract.NewEntryPoint("spawnCounters").Input(types.Nat).Lazy()
	if err := spawn.Code(func(n ast.Accessor) []ast.Statement {
		loop := ast.For(ast.Nat(0), n, ast.Nat(1)).Named("i").Do(func(i ast.Expression) []ast.Statement {
			op := ast.CreateContract(counter, ast.None(types.KeyHash), ast.Mutez(0), ast.Cast(i, types.Nat))
			return []ast.Statement{op.Send()}
		})
		return []ast.Statement{
			ast.Require(ast.Eq(ast.Sender(), st.Get("owner")), ast.String("not owner")),
			loop,
		}
	}); err != nil {
		return nil, err
	}

	highest := contract.NewView("highestBid").Description("current highest bid")
	if err := highest.Code(func(ast.Accessor) []ast.Statement {
		return []ast.Statement{ast.Return(ast.Pair(st.Get("bidder"), st.Get("bid")))}
	}); err != nil {
		return nil, err
	}
	return assemble(c, []*contract.EntryPoint{bid, closeAuction, delegate, spawn}, highest)
}
