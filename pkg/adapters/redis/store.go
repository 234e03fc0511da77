package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/Catneko-0422/tuerulebase/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "tuerulebase:"

// Store implements ports.RuleStore using Redis.
//
// Layout under the prefix:
//
//	rule:<id>            JSON rule
//	node:<id>            JSON node
//	rules, nodes         ZSETs of ids scored by id
//	roots:<rule>         ZSET of root node ids of one rule
//	children:<parent>    ZSET of child node ids
//	seq:rule, seq:node   id counters
//
// Node mutations take a tree lock so a child cannot be attached to a node
// that another replica is deleting.
type Store struct {
	client  backend.UniversalClient
	prefix  string
	locker  ports.DistributedLocker
	lockTTL time.Duration
}

var _ ports.RuleStore = (*Store)(nil)

type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithLocker replaces the default Redis locker.
func WithLocker(l ports.DistributedLocker) Option {
	return func(s *Store) {
		s.locker = l
	}
}

// WithLockTTL sets how long a tree lock survives a crashed holder.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.lockTTL = ttl
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client backend.UniversalClient, opts ...Option) *Store {
	store := &Store{
		client:  client,
		prefix:  DefaultPrefix,
		lockTTL: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.locker == nil {
		store.locker = NewLocker(client, store.prefix)
	}
	return store
}

func (s *Store) ruleKey(id int64) string { return s.prefix + "rule:" + strconv.FormatInt(id, 10) }
func (s *Store) nodeKey(id int64) string { return s.prefix + "node:" + strconv.FormatInt(id, 10) }
func (s *Store) rulesKey() string        { return s.prefix + "rules" }
func (s *Store) nodesKey() string        { return s.prefix + "nodes" }

func (s *Store) rootsKey(ruleID int64) string {
	return s.prefix + "roots:" + strconv.FormatInt(ruleID, 10)
}

func (s *Store) childrenKey(parentID int64) string {
	return s.prefix + "children:" + strconv.FormatInt(parentID, 10)
}

// levelKey is the index a node is listed under.
func (s *Store) levelKey(n domain.Node) string {
	if n.ParentID == nil {
		return s.rootsKey(n.RuleID)
	}
	return s.childrenKey(*n.ParentID)
}

// CreateRule persists a rule under the next id.
func (s *Store) CreateRule(ctx context.Context, rule domain.Rule) (domain.Rule, error) {
	id, err := s.client.Incr(ctx, s.prefix+"seq:rule").Result()
	if err != nil {
		return domain.Rule{}, fmt.Errorf("failed to allocate rule id: %w", err)
	}
	rule.ID = id
	data, err := json.Marshal(rule)
	if err != nil {
		return domain.Rule{}, fmt.Errorf("failed to marshal rule: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.ruleKey(id), data, 0)
	pipe.ZAdd(ctx, s.rulesKey(), backend.Z{Score: float64(id), Member: id})
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.Rule{}, fmt.Errorf("failed to save rule to redis: %w", err)
	}
	return rule, nil
}

// GetRule loads one rule.
func (s *Store) GetRule(ctx context.Context, id int64) (domain.Rule, error) {
	val, err := s.client.Get(ctx, s.ruleKey(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Rule{}, fmt.Errorf("%w: %d", domain.ErrRuleNotFound, id)
		}
		return domain.Rule{}, fmt.Errorf("failed to get rule from redis: %w", err)
	}
	var rule domain.Rule
	if err := json.Unmarshal([]byte(val), &rule); err != nil {
		return domain.Rule{}, fmt.Errorf("failed to unmarshal rule: %w", err)
	}
	return rule, nil
}

// ListRules returns every rule in id order.
func (s *Store) ListRules(ctx context.Context) ([]domain.Rule, error) {
	ids, err := s.client.ZRange(ctx, s.rulesKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.prefix + "rule:" + id
	}
	rules := make([]domain.Rule, 0, len(keys))
	err = s.mget(ctx, keys, func(raw string) error {
		var r domain.Rule
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return fmt.Errorf("failed to unmarshal rule: %w", err)
		}
		rules = append(rules, r)
		return nil
	})
	return rules, err
}

// CreateNode persists a node after checking its rule and parent exist.
func (s *Store) CreateNode(ctx context.Context, node domain.Node) (domain.Node, error) {
	unlock, err := s.locker.Lock(ctx, "tree", s.lockTTL)
	if err != nil {
		return domain.Node{}, fmt.Errorf("failed to lock tree: %w", err)
	}
	defer unlock(context.WithoutCancel(ctx))

	n, err := s.client.Exists(ctx, s.ruleKey(node.RuleID)).Result()
	if err != nil {
		return domain.Node{}, fmt.Errorf("failed to check rule: %w", err)
	}
	if n == 0 {
		return domain.Node{}, fmt.Errorf("%w: %d", domain.ErrRuleNotFound, node.RuleID)
	}
	if node.ParentID != nil {
		n, err := s.client.Exists(ctx, s.nodeKey(*node.ParentID)).Result()
		if err != nil {
			return domain.Node{}, fmt.Errorf("failed to check parent: %w", err)
		}
		if n == 0 {
			return domain.Node{}, fmt.Errorf("parent %w: %d", domain.ErrNodeNotFound, *node.ParentID)
		}
	}

	id, err := s.client.Incr(ctx, s.prefix+"seq:node").Result()
	if err != nil {
		return domain.Node{}, fmt.Errorf("failed to allocate node id: %w", err)
	}
	node.ID = id
	data, err := json.Marshal(node)
	if err != nil {
		return domain.Node{}, fmt.Errorf("failed to marshal node: %w", err)
	}

	z := backend.Z{Score: float64(id), Member: id}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.nodeKey(id), data, 0)
	pipe.ZAdd(ctx, s.nodesKey(), z)
	pipe.ZAdd(ctx, s.levelKey(node), z)
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.Node{}, fmt.Errorf("failed to save node to redis: %w", err)
	}
	return node, nil
}

// GetNode loads one node.
func (s *Store) GetNode(ctx context.Context, id int64) (domain.Node, error) {
	val, err := s.client.Get(ctx, s.nodeKey(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Node{}, fmt.Errorf("%w: %d", domain.ErrNodeNotFound, id)
		}
		return domain.Node{}, fmt.Errorf("failed to get node from redis: %w", err)
	}
	var node domain.Node
	if err := json.Unmarshal([]byte(val), &node); err != nil {
		return domain.Node{}, fmt.Errorf("failed to unmarshal node: %w", err)
	}
	return node, nil
}

// HasChildren reports whether the children index of id is non-empty.
func (s *Store) HasChildren(ctx context.Context, id int64) (bool, error) {
	n, err := s.client.ZCard(ctx, s.childrenKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to count children: %w", err)
	}
	return n > 0, nil
}

// ListNodes returns one level of one rule's tree.
func (s *Store) ListNodes(ctx context.Context, ruleID int64, parentID *int64, key domain.SortKey) ([]domain.Node, error) {
	index := s.rootsKey(ruleID)
	if parentID != nil {
		index = s.childrenKey(*parentID)
	}
	nodes, err := s.loadIndex(ctx, index)
	if err != nil {
		return nil, err
	}
	out := nodes[:0]
	for _, n := range nodes {
		if n.RuleID == ruleID {
			out = append(out, n)
		}
	}
	domain.SortNodes(out, key)
	return out, nil
}

// DeleteNode removes a childless node and its index entries.
func (s *Store) DeleteNode(ctx context.Context, id int64) error {
	unlock, err := s.locker.Lock(ctx, "tree", s.lockTTL)
	if err != nil {
		return fmt.Errorf("failed to lock tree: %w", err)
	}
	defer unlock(context.WithoutCancel(ctx))

	node, err := s.GetNode(ctx, id)
	if err != nil {
		return err
	}
	has, err := s.HasChildren(ctx, id)
	if err != nil {
		return err
	}
	if has {
		return fmt.Errorf("%w: %d", domain.ErrNodeHasChildren, id)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.nodeKey(id))
	pipe.ZRem(ctx, s.nodesKey(), id)
	pipe.ZRem(ctx, s.levelKey(node), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete node from redis: %w", err)
	}
	return nil
}

// Snapshot returns every node in id order.
func (s *Store) Snapshot(ctx context.Context) ([]domain.Node, error) {
	return s.loadIndex(ctx, s.nodesKey())
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// loadIndex fetches the nodes listed in a ZSET, in score order.
func (s *Store) loadIndex(ctx context.Context, index string) ([]domain.Node, error) {
	ids, err := s.client.ZRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", index, err)
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.prefix + "node:" + id
	}
	nodes := make([]domain.Node, 0, len(keys))
	err = s.mget(ctx, keys, func(raw string) error {
		var n domain.Node
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			return fmt.Errorf("failed to unmarshal node: %w", err)
		}
		nodes = append(nodes, n)
		return nil
	})
	return nodes, err
}

// mget reads keys in one round trip. Keys that vanished between the index
// read and the fetch are skipped.
func (s *Store) mget(ctx context.Context, keys []string, fn func(raw string) error) error {
	if len(keys) == 0 {
		return nil
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return fmt.Errorf("failed to fetch from redis: %w", err)
	}
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		if err := fn(raw); err != nil {
			return err
		}
	}
	return nil
}
