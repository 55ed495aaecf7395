// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryDatabase(t *testing.T) {
	require := require.New(t)

	db := NewMemory()
	defer db.Close()

	key := []byte("auction/test")
	value := []byte("record")

	has, err := db.Has(key)
	require.NoError(err)
	require.False(has)

	_, err = db.Get(key)
	require.ErrorIs(err, ErrNotFound)

	require.NoError(db.Put(key, value))

	got, err := db.Get(key)
	require.NoError(err)
	require.Equal(value, got)

	has, err = db.Has(key)
	require.NoError(err)
	require.True(has)

	require.NoError(db.Delete(key))
	_, err = db.Get(key)
	require.ErrorIs(err, ErrNotFound)
}

func TestBadgerDatabase(t *testing.T) {
	require := require.New(t)

	db, err := New("badger", t.TempDir())
	require.NoError(err)
	defer db.Close()

	require.NoError(db.Put([]byte("k"), []byte("v")))

	got, err := db.Get([]byte("k"))
	require.NoError(err)
	require.Equal([]byte("v"), got)

	has, err := db.Has([]byte("missing"))
	require.NoError(err)
	require.False(has)
}
