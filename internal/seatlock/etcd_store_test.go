package seatlock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
)

type fakeTxn struct {
	kv      *fakeKV
	ifs     int
	thens   int
	success bool
	err     error
}

func (t *fakeTxn) If(cs ...clientv3.Cmp) clientv3.Txn {
	t.ifs += len(cs)
	return t
}

func (t *fakeTxn) Then(ops ...clientv3.Op) clientv3.Txn {
	t.thens += len(ops)
	for _, op := range ops {
		if op.IsPut() {
			t.kv.putKeys = append(t.kv.putKeys, string(op.KeyBytes()))
			t.kv.putValues = append(t.kv.putValues, string(op.ValueBytes()))
		}
	}
	return t
}

func (t *fakeTxn) Else(ops ...clientv3.Op) clientv3.Txn { return t }

func (t *fakeTxn) Commit() (*clientv3.TxnResponse, error) {
	if t.err != nil {
		return nil, t.err
	}
	return &clientv3.TxnResponse{Succeeded: t.success}, nil
}

type fakeKV struct {
	clientv3.KV

	txnSucceeded bool
	txnErr       error
	lastTxn      *fakeTxn
	putKeys      []string
	putValues    []string

	deleted []string
	getKey  string
	getOpts int
	kvs     []*mvccpb.KeyValue
	getErr  error
}

func (f *fakeKV) Txn(ctx context.Context) clientv3.Txn {
	f.lastTxn = &fakeTxn{kv: f, success: f.txnSucceeded, err: f.txnErr}
	return f.lastTxn
}

func (f *fakeKV) Delete(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.DeleteResponse, error) {
	f.deleted = append(f.deleted, key)
	return &clientv3.DeleteResponse{}, nil
}

func (f *fakeKV) Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error) {
	f.getKey = key
	f.getOpts = len(opts)
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &clientv3.GetResponse{Kvs: f.kvs}, nil
}

type fakeLease struct {
	granted []int64
	revoked []clientv3.LeaseID
	err     error
}

func (f *fakeLease) Grant(ctx context.Context, ttl int64) (*clientv3.LeaseGrantResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.granted = append(f.granted, ttl)
	return &clientv3.LeaseGrantResponse{ID: clientv3.LeaseID(len(f.granted)), TTL: ttl}, nil
}

func (f *fakeLease) Revoke(ctx context.Context, id clientv3.LeaseID) (*clientv3.LeaseRevokeResponse, error) {
	f.revoked = append(f.revoked, id)
	return &clientv3.LeaseRevokeResponse{}, nil
}

func TestEtcdStore_CreateIfAbsent(t *testing.T) {
	kv := &fakeKV{txnSucceeded: true}
	lease := &fakeLease{}
	store := newEtcdStore(kv, lease, "/flightbook/seat_locks")

	created, err := store.CreateIfAbsent(context.Background(), "100:A01", 100, 200, 300*time.Second)
	require.NoError(t, err)
	assert.True(t, created)

	assert.Equal(t, []int64{300}, lease.granted)
	assert.Empty(t, lease.revoked)
	assert.Equal(t, 1, kv.lastTxn.ifs)
	assert.Equal(t, []string{"/flightbook/seat_locks/100:A01"}, kv.putKeys)
	assert.Equal(t, []string{"200"}, kv.putValues)
}

func TestEtcdStore_CreateIfAbsent_ExistingKeyRevokesLease(t *testing.T) {
	kv := &fakeKV{txnSucceeded: false}
	lease := &fakeLease{}
	store := newEtcdStore(kv, lease, "/flightbook/seat_locks/")

	created, err := store.CreateIfAbsent(context.Background(), "100:A01", 100, 201, 300*time.Second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, []clientv3.LeaseID{1}, lease.revoked)
}

func TestEtcdStore_CreateIfAbsent_Errors(t *testing.T) {
	t.Run("grant", func(t *testing.T) {
		store := newEtcdStore(&fakeKV{}, &fakeLease{err: errors.New("no leader")}, "/p/")
		_, err := store.CreateIfAbsent(context.Background(), "100:A01", 100, 200, time.Minute)
		assert.Error(t, err)
	})

	t.Run("txn", func(t *testing.T) {
		lease := &fakeLease{}
		store := newEtcdStore(&fakeKV{txnErr: context.DeadlineExceeded}, lease, "/p/")
		_, err := store.CreateIfAbsent(context.Background(), "100:A01", 100, 200, time.Minute)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Empty(t, lease.revoked)
	})
}

func TestEtcdStore_Delete(t *testing.T) {
	kv := &fakeKV{}
	store := newEtcdStore(kv, &fakeLease{}, "/flightbook/seat_locks/")

	require.NoError(t, store.Delete(context.Background(), "100:A01"))
	assert.Equal(t, []string{"/flightbook/seat_locks/100:A01"}, kv.deleted)
}

func TestEtcdStore_KeysBySchedule(t *testing.T) {
	kv := &fakeKV{kvs: []*mvccpb.KeyValue{
		{Key: []byte("/flightbook/seat_locks/100:A01")},
		{Key: []byte("/flightbook/seat_locks/100:C03")},
	}}
	store := newEtcdStore(kv, &fakeLease{}, "/flightbook/seat_locks/")

	keys, err := store.KeysBySchedule(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"100:A01", "100:C03"}, keys)
	assert.Equal(t, "/flightbook/seat_locks/100:", kv.getKey)
	assert.Equal(t, 2, kv.getOpts)
}
