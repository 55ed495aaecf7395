// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/gda/pkg/log"
)

func TestBookTransfer(t *testing.T) {
	require := require.New(t)

	book := NewBook(log.NoOp())
	book.Mint("alice", uint256.NewInt(1000))

	require.NoError(book.Transfer("alice", "bob", uint256.NewInt(400)))
	require.Equal(uint256.NewInt(600), book.BalanceOf("alice"))
	require.Equal(uint256.NewInt(400), book.BalanceOf("bob"))

	err := book.Transfer("alice", "bob", uint256.NewInt(601))
	require.ErrorIs(err, ErrInsufficientBalance)
	require.Equal(uint256.NewInt(600), book.BalanceOf("alice"))
}

func TestBookTransferFrom(t *testing.T) {
	require := require.New(t)

	book := NewBook(log.NoOp())
	book.Mint("alice", uint256.NewInt(1000))

	// No allowance yet.
	err := book.TransferFrom("engine", "alice", "bob", uint256.NewInt(100))
	require.ErrorIs(err, ErrInsufficientAllowance)

	book.Approve("alice", "engine", uint256.NewInt(500))
	require.NoError(book.TransferFrom("engine", "alice", "bob", uint256.NewInt(300)))
	require.Equal(uint256.NewInt(200), book.Allowance("alice", "engine"))

	// Allowance exhausted below requested amount.
	err = book.TransferFrom("engine", "alice", "bob", uint256.NewInt(300))
	require.ErrorIs(err, ErrInsufficientAllowance)

	// Self-spending needs no allowance.
	require.NoError(book.TransferFrom("alice", "alice", "bob", uint256.NewInt(100)))
}

func TestTokenRegistry(t *testing.T) {
	require := require.New(t)

	reg := NewTokenRegistry()
	require.NoError(reg.Mint("alice", 5042))

	owner, err := reg.OwnerOf(5042)
	require.NoError(err)
	require.Equal("alice", owner)

	_, err = reg.OwnerOf(999)
	require.ErrorIs(err, ErrUnknownToken)

	// Unauthorized operator.
	err = reg.TransferFrom("mallory", "alice", "mallory", 5042)
	require.ErrorIs(err, ErrNotOwned)

	reg.SetApprovalForAll("alice", "engine", true)
	require.True(reg.IsApprovedForAll("alice", "engine"))
	require.NoError(reg.TransferFrom("engine", "alice", "bob", 5042))

	owner, err = reg.OwnerOf(5042)
	require.NoError(err)
	require.Equal("bob", owner)

	// Previous owner can no longer move it.
	err = reg.TransferFrom("engine", "alice", "carol", 5042)
	require.ErrorIs(err, ErrNotOwned)
}

func TestMintableToken(t *testing.T) {
	require := require.New(t)

	token := NewMintableToken("TKN", 10)
	require.NoError(token.Mint("alice", 6))
	require.Equal(uint64(6), token.Minted())
	require.Equal(uint64(6), token.BalanceOf("alice"))

	err := token.Mint("bob", 5)
	require.ErrorIs(err, ErrSupplyExceeded)
	require.Equal(uint64(6), token.Minted())

	require.NoError(token.Mint("bob", 4))
	require.Equal(uint64(10), token.Minted())

	// Zero cap is unbounded.
	open := NewMintableToken("OPEN", 0)
	require.NoError(open.Mint("alice", 1_000_000))
}
