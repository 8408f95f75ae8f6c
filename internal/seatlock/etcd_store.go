package seatlock

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// leaser is the part of clientv3.Lease the store needs.
type leaser interface {
	Grant(ctx context.Context, ttl int64) (*clientv3.LeaseGrantResponse, error)
	Revoke(ctx context.Context, id clientv3.LeaseID) (*clientv3.LeaseRevokeResponse, error)
}

// EtcdStore keeps one key per lock under prefix. Every record is attached
// to its own lease so expiry is enforced by the cluster, and the key layout
// "<prefix><scheduleId>:<seat>" lets a prefix range act as the schedule
// index.
type EtcdStore struct {
	kv     clientv3.KV
	lease  leaser
	prefix string
}

func NewEtcdStore(client *clientv3.Client, prefix string) *EtcdStore {
	return newEtcdStore(client, client, prefix)
}

func newEtcdStore(kv clientv3.KV, lease leaser, prefix string) *EtcdStore {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &EtcdStore{kv: kv, lease: lease, prefix: prefix}
}

func (s *EtcdStore) CreateIfAbsent(ctx context.Context, key string, _ int64, userID int64, ttl time.Duration) (bool, error) {
	grant, err := s.lease.Grant(ctx, ttlSeconds(ttl))
	if err != nil {
		return false, fmt.Errorf("etcd grant lease for %s: %w", key, err)
	}

	etcdKey := s.prefix + key
	resp, err := s.kv.Txn(ctx).
		If(clientv3.Compare(clientv3.CreateRevision(etcdKey), "=", 0)).
		Then(clientv3.OpPut(etcdKey, strconv.FormatInt(userID, 10), clientv3.WithLease(grant.ID))).
		Commit()
	if err != nil {
		// Outcome unknown; the lease bounds the record either way.
		return false, fmt.Errorf("etcd acquire %s: %w", key, err)
	}

	if !resp.Succeeded {
		// Nothing was written under this lease.
		_, _ = s.lease.Revoke(ctx, grant.ID)
		return false, nil
	}
	return true, nil
}

func (s *EtcdStore) Delete(ctx context.Context, key string) error {
	if _, err := s.kv.Delete(ctx, s.prefix+key); err != nil {
		return fmt.Errorf("etcd release %s: %w", key, err)
	}
	return nil
}

func (s *EtcdStore) KeysBySchedule(ctx context.Context, scheduleID int64) ([]string, error) {
	resp, err := s.kv.Get(ctx, s.prefix+schedulePrefix(scheduleID), clientv3.WithPrefix(), clientv3.WithKeysOnly())
	if err != nil {
		return nil, fmt.Errorf("etcd list locks for schedule %d: %w", scheduleID, err)
	}

	keys := make([]string, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		keys = append(keys, strings.TrimPrefix(string(kv.Key), s.prefix))
	}
	return keys, nil
}
