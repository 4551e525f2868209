// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package samples

import (
	"github.com/probechain/go-probe-dsl/lang/ast"
	"github.com/probechain/go-probe-dsl/lang/contract"
	"github.com/probechain/go-probe-dsl/lang/types"
)

func init() {
	Register(Sample{
		Name:        "counter",
		Description: "nat counter with bounded decrement and a read view",
		Build:       buildCounter,
	})
}

func buildCounter() (*contract.Contract, error) {
	return counterOn(contract.New())
}

// counterOn installs the counter storage, entry points and view on c.
func counterOn(c *contract.Contract) (*contract.Contract, error) {
	c.SetStorageType(types.Nat).SetStorage(ast.Nat(0))

	increment := contract.NewEntryPoint("increment").Input(types.Nat)
	if err := increment.Code(func(by ast.Accessor) []ast.Statement {
		return []ast.Statement{
			ast.SetValue(ast.Storage(), ast.Add(ast.Storage(), by)),
		}
	}); err != nil {
		return nil, err
	}

	decrement := contract.NewEntryPoint("decrement").Input(types.Nat)
	if err := decrement.Code(func(by ast.Accessor) []ast.Statement {
		return []ast.Statement{
			ast.Require(ast.Ge(ast.Storage(), by), ast.String("counter underflow")),
			ast.SetValue(ast.Storage(), ast.Sub(ast.Storage(), by)),
		}
	}); err != nil {
		return nil, err
	}

	reset := contract.NewEntryPoint("reset")
	if err := reset.Code(func(ast.Accessor) []ast.Statement {
		return []ast.Statement{ast.SetValue(ast.Storage(), ast.Nat(0))}
	}); err != nil {
		return nil, err
	}

	value := contract.NewView("value").Description("current counter value")
	if err := value.Code(func(ast.Accessor) []ast.Statement {
		return []ast.Statement{ast.Return(ast.Storage())}
	}); err != nil {
		return nil, err
	}
	return assemble(c, []*contract.EntryPoint{increment, decrement, reset}, value)
}

// buildHalvingCounter extends the counter with a bounded while loop.
func buildHalvingCounter() (*contract.Contract, error) {
	c, err := buildCounter()
	if err != nil {
		return nil, err
	}
	halve := contract.NewEntryPoint("halve").Input(types.Nat)
	if err := halve.Code(func(times ast.Accessor) []ast.Statement {
		steps := ast.GetVariable("steps")
		return []ast.Statement{
			ast.DefineLocal("steps", times, true),
			ast.While(ast.And(ast.Gt(steps, ast.Nat(0)), ast.Gt(ast.Storage(), ast.Nat(0)))).Do(func() []ast.Statement {
				return []ast.Statement{
					ast.SetValue(ast.Storage(), ast.First(ast.OpenSome(ast.EDiv(ast.Storage(), ast.Nat(2)), nil))),
					ast.SetValue(steps, ast.Abs(ast.Sub(steps, ast.Nat(1)))),
				}
			}),
		}
	}); err != nil {
		return nil, err
	}
	if err := c.AddEntrypoint(halve); err != nil {
		return nil, err
	}
	return c, nil
}

func init() {
	Register(Sample{
		Name:        "halving-counter",
		Description: "counter with a loop that halves the value",
		Build:       buildHalvingCounter,
	})
}
