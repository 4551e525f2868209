// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package samples

import (
	"github.com/probechain/go-probe-dsl/lang/ast"
	"github.com/probechain/go-probe-dsl/lang/contract"
	"github.com/probechain/go-probe-dsl/lang/types"
)

// LedgerAdmin is the administrator baked into the ledger sample storage.
const LedgerAdmin = "tz1VSUr8wwNhLAzempoch5d6hLRiTh8Cjcjb"

func init() {
	Register(Sample{
		Name:        "ledger",
		Description: "fungible token ledger with admin minting and pause",
		Build:       buildLedger,
	})
}

func field(name string, t types.Type) types.Field {
	return types.Field{Name: name, Type: t}
}

var (
	ledgerStorageType = types.MustRecord([]types.Field{
		field("ledger", types.BigMap(types.Address, types.Nat)),
		field("admin", types.Address),
		field("paused", types.Bool),
		field("totalSupply", types.Nat),
	})
	transferType = types.MustRecord([]types.Field{
		field("from", types.Address),
		field("to", types.Address),
		field("value", types.Nat),
	})
	mintType = types.MustRecord([]types.Field{
		field("to", types.Address),
		field("value", types.Nat),
	})
	adminActionType = types.MustVariant([]types.Field{
		field("setAdmin", types.Address),
		field("setPause", types.Bool),
	})
)

func buildLedger() (*contract.Contract, error) {
	storage, err := ast.Record([]ast.RecordField{
		{Name: "ledger", Value: ast.BigMap(types.Address, types.Nat, nil)},
		{Name: "admin", Value: ast.Address(LedgerAdmin)},
		{Name: "paused", Value: ast.Bool(false)},
		{Name: "totalSupply", Value: ast.Nat(0)},
	})
	if err != nil {
		return nil, err
	}
	c := contract.New().
		SetStorageType(ledgerStorageType).
		SetStorage(storage).
		AddFlag(contract.Exceptions(contract.ExceptionsDefaultLine))

	st := ast.Access(ast.Storage())
	ledger := st.Get("ledger")
	onlyAdmin := ast.Require(ast.Eq(ast.Sender(), st.Get("admin")), ast.String("not admin"))
	credit := func(to, value ast.Expression) ast.Statement {
		return ast.SetMapEntry(ledger, to, ast.Add(ast.MapGetOr(ledger, to, ast.Nat(0)), value))
	}

	transfer := contract.NewEntryPoint("transfer").Input(transferType)
	if err := transfer.Code(func(p ast.Accessor) []ast.Statement {
		balance := ast.GetVariable("fromBalance")
		return []ast.Statement{
			ast.Require(ast.Not(st.Get("paused")), ast.String("paused")),
			ast.Require(ast.Eq(ast.Sender(), p.Get("from")), ast.String("not owner")),
			ast.DefineLocal("fromBalance", ast.MapGetOr(ledger, p.Get("from"), ast.Nat(0)), false),
			ast.Require(ast.Ge(balance, p.Get("value")), ast.String("insufficient balance")),
			ast.SetMapEntry(ledger, p.Get("from"),
				ast.OpenSome(ast.IsNat(ast.Sub(balance, p.Get("value"))), ast.String("underflow"))),
			credit(p.Get("to"), p.Get("value")),
		}
	}); err != nil {
		return nil, err
	}

	mint := contract.NewEntryPoint("mint").Input(mintType)
	if err := mint.Code(func(p ast.Accessor) []ast.Statement {
		return []ast.Statement{
			onlyAdmin,
			credit(p.Get("to"), p.Get("value")),
			ast.SetValue(st.Get("totalSupply"), ast.Add(st.Get("totalSupply"), p.Get("value"))),
		}
	}); err != nil {
		return nil, err
	}

	airdrop := contract.NewEntryPoint("airdrop").Input(types.List(mintType)).Lazy()
	if err := airdrop.Code(func(p ast.Accessor) []ast.Statement {
		loop := ast.ForEachOf(p).Named("drop").Do(func(it ast.Expression) []ast.Statement {
			drop := ast.Access(it)
			return []ast.Statement{
				credit(drop.Get("to"), drop.Get("value")),
				ast.SetValue(st.Get("totalSupply"), ast.Add(st.Get("totalSupply"), drop.Get("value"))),
			}
		})
		return []ast.Statement{onlyAdmin, loop}
	}); err != nil {
		return nil, err
	}

	admin := contract.NewEntryPoint("admin").Input(adminActionType)
	if err := admin.Code(func(p ast.Accessor) []ast.Statement {
		match := ast.MatchVariant(p).
			Case("setAdmin", func(arg ast.Expression) []ast.Statement {
				return []ast.Statement{ast.SetValue(st.Get("admin"), arg)}
			}).
			Case("setPause", func(arg ast.Expression) []ast.Statement {
				return []ast.Statement{ast.SetValue(st.Get("paused"), arg)}
			})
		return []ast.Statement{onlyAdmin, match}
	}); err != nil {
		return nil, err
	}

	getBalance := contract.NewView("getBalance").Input(types.Address)
	if err := getBalance.Code(func(owner ast.Accessor) []ast.Statement {
		return []ast.Statement{ast.Return(ast.MapGetOr(ledger, owner, ast.Nat(0)))}
	}); err != nil {
		return nil, err
	}
	totalSupply := contract.NewView("getTotalSupply").Description("minted tokens")
	if err := totalSupply.Code(func(ast.Accessor) []ast.Statement {
		return []ast.Statement{ast.Return(st.Get("totalSupply"))}
	}); err != nil {
		return nil, err
	}
	return assemble(c, []*contract.EntryPoint{transfer, mint, airdrop, admin}, getBalance, totalSupply)
}
