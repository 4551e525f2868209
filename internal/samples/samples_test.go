// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package samples

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probechain/go-probe-dsl/lang/sexpr"
)

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"auction", "counter", "halving-counter", "ledger"}, Names())

	s, ok := Get("ledger")
	require.True(t, ok)
	assert.NotEmpty(t, s.Description)

	_, err := Build("missing")
	assert.True(t, errors.Is(err, ErrUnknownSample))

	assert.Panics(t, func() { Register(Sample{Name: "counter"}) })
}

func TestSamplesSerialize(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, err := Build(name)
			require.NoError(t, err)

			first, err := c.Serialize()
			require.NoError(t, err)
			second, err := c.Serialize()
			require.NoError(t, err)
			assert.Equal(t, first, second)

			node, err := sexpr.ParseOne(first)
			require.NoError(t, err)
			assert.Equal(t, "storage", node.(*sexpr.List).Head())
			assert.Equal(t, first, node.String())
		})
	}
}

func entrypointNames(t *testing.T, name string) []string {
	t.Helper()
	c, err := Build(name)
	require.NoError(t, err)
	var names []string
	for _, ep := range c.Entrypoints() {
		names = append(names, ep.Name())
	}
	return names
}

func TestDeclarationOrder(t *testing.T) {
	assert.Equal(t, []string{"increment", "decrement", "reset"}, entrypointNames(t, "counter"))
	assert.Equal(t, []string{"increment", "decrement", "reset", "halve"}, entrypointNames(t, "halving-counter"))
	assert.Equal(t, []string{"transfer", "mint", "airdrop", "admin"}, entrypointNames(t, "ledger"))
	assert.Equal(t, []string{"bid", "close", "delegate", "spawnCounters"}, entrypointNames(t, "auction"))
}

func TestFreshBuildsMatch(t *testing.T) {
	for _, name := range []string{"counter", "auction"} {
		a, err := Build(name)
		require.NoError(t, err)
		b, err := Build(name)
		require.NoError(t, err)

		fa, err := a.Fingerprint()
		require.NoError(t, err)
		fb, err := b.Fingerprint()
		require.NoError(t, err)
		assert.Equal(t, fa, fb, name)
	}
}

func TestCounterText(t *testing.T) {
	c, err := Build("counter")
	require.NoError(t, err)
	text := c.String()

	for _, want := range []string{
		`(storage (literal (nat 0) ("" -1)) storage_type ("nat")`,
		`(decrement True False False True ("" -1) ((set_type (params ("" -1)) "nat" ("" -1))`,
		`(verify (ge (data) (params ("" -1))) (literal (string "counter underflow") ("" -1)) ("" -1))`,
		`(reset True False False False ("" -1) ((set (data) (literal (nat 0) ("" -1)) ("" -1))))`,
		`(onchain "value" False ("" -1) "current counter value" ((result (data) ("" -1))))`,
	} {
		assert.Contains(t, text, want)
	}
}

func TestAuctionText(t *testing.T) {
	c, err := Build("auction")
	require.NoError(t, err)
	text := c.String()

	assert.Contains(t, text, `(lambda 0 False False "amount" ("" -1)`)
	assert.Contains(t, text, `(forGroup "i" (range (literal (nat 0) ("" -1)) (params ("" -1)) (literal (nat 1) ("" -1)) ("" -1))`)
	assert.Contains(t, text, `(create_contract (contract (storage (literal (nat 0) ("" -1))`)
	assert.Contains(t, text, `(Some ((("owner") ("bidder")) (("bid") (("deadline") ("closed")))))`)
	assert.Contains(t, text, `spawnCounters True True False True`)
	assert.Equal(t, 1, strings.Count(text, "(lambda "))
}

func TestLedgerText(t *testing.T) {
	c, err := Build("ledger")
	require.NoError(t, err)
	text := c.String()

	assert.Contains(t, text, `flags ((exceptions default-line))`)
	assert.Contains(t, text, `(forGroup "drop" (params ("" -1))`)
	assert.Contains(t, text, `(match_cases (params ("" -1)) "__match_`)
	assert.Contains(t, text, `(case "setAdmin"`)
	assert.Contains(t, text, `(big_map ("" -1))`)
}
