// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

package kvengine

import (
	"context"
	"testing"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanquery/scanquery/internal/predicate"
)

func openTestInstance(t *testing.T) *Instance {
	t.Helper()
	dir := t.TempDir()
	db, err := badger.Open(badger.DefaultOptions(dir))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &Instance{db: db, mode: ModeReadOnly}
}

func seedRecords(t *testing.T, inst *Instance, records map[string]string) {
	t.Helper()
	err := inst.db.Update(func(txn *badger.Txn) error {
		for k, v := range records {
			if err := txn.Set([]byte(k), []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestScanFiltersByPredicate(t *testing.T) {
	inst := openTestInstance(t)
	seedRecords(t, inst, map[string]string{
		"k1": `{"level":15}`,
		"k2": `{"level":5}`,
		"k3": `{"level":25}`,
	})

	pred, err := predicate.Compile([]byte(`{"type":1,"column":"level","lower":10,"upper":20}`))
	require.NoError(t, err)

	resp, err := inst.Scan(context.Background(), ScanRequest{Predicate: pred, MaxCount: 100})
	require.NoError(t, err)
	assert.False(t, resp.More)
	assert.Equal(t, [][]byte{[]byte(`{"level":15}`)}, resp.Values)
	assert.Equal(t, 3, resp.RecordsVisited)
	assert.Equal(t, 1, resp.RecordsMatched)
}

func TestScanPaginatesWithMaxCount(t *testing.T) {
	inst := openTestInstance(t)
	seedRecords(t, inst, map[string]string{
		"k1": `{"v":1}`,
		"k2": `{"v":2}`,
		"k3": `{"v":3}`,
	})

	first, err := inst.Scan(context.Background(), ScanRequest{MaxCount: 2})
	require.NoError(t, err)
	require.Len(t, first.Values, 2)
	assert.True(t, first.More)
	assert.Equal(t, []byte("k2"), first.LastKey)

	second, err := inst.Scan(context.Background(), ScanRequest{StartKey: first.LastKey, MaxCount: 2})
	require.NoError(t, err)
	require.Len(t, second.Values, 1)
	assert.False(t, second.More)
	assert.Equal(t, []byte(`{"v":3}`), second.Values[0])
}

func TestScanReportsMoreWhenCutoffCoincidesWithFinalKey(t *testing.T) {
	inst := openTestInstance(t)
	seedRecords(t, inst, map[string]string{
		"k1": `{"v":1}`,
		"k2": `{"v":2}`,
	})

	resp, err := inst.Scan(context.Background(), ScanRequest{MaxCount: 2})
	require.NoError(t, err)
	require.Len(t, resp.Values, 2)
	assert.True(t, resp.More)
	assert.Equal(t, []byte("k2"), resp.LastKey)
}

func TestScanExcludesExactStartKey(t *testing.T) {
	inst := openTestInstance(t)
	seedRecords(t, inst, map[string]string{
		"k1": `{"v":1}`,
		"k2": `{"v":2}`,
	})

	resp, err := inst.Scan(context.Background(), ScanRequest{StartKey: []byte("k1"), MaxCount: 10})
	require.NoError(t, err)
	require.Len(t, resp.Values, 1)
	assert.Equal(t, []byte(`{"v":2}`), resp.Values[0])
}

func TestScanEndKeyIsExclusive(t *testing.T) {
	inst := openTestInstance(t)
	seedRecords(t, inst, map[string]string{
		"k1": `{"v":1}`,
		"k2": `{"v":2}`,
		"k3": `{"v":3}`,
	})

	resp, err := inst.Scan(context.Background(), ScanRequest{EndKey: []byte("k3"), MaxCount: 10})
	require.NoError(t, err)
	require.Len(t, resp.Values, 2)
	assert.Equal(t, []byte("k2"), resp.LastKey)
}

func TestScanSkipsUnparseableRecordsWithoutFailing(t *testing.T) {
	inst := openTestInstance(t)
	seedRecords(t, inst, map[string]string{
		"k1": `not json`,
		"k2": `{"v":2}`,
	})

	resp, err := inst.Scan(context.Background(), ScanRequest{MaxCount: 10})
	require.NoError(t, err)
	require.Len(t, resp.Values, 1)
	assert.Equal(t, []byte(`{"v":2}`), resp.Values[0])
}

func TestScanRespectsContextCancellation(t *testing.T) {
	inst := openTestInstance(t)
	seedRecords(t, inst, map[string]string{"k1": `{"v":1}`})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := inst.Scan(ctx, ScanRequest{MaxCount: 10})
	assert.Error(t, err)
}
