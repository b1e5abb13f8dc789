package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/matchcentre/internal/domain/kv"
)

// KVStore keeps JSON-encoded values in process memory. Values are encoded on
// write so callers never share state with the store.
type KVStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewKVStore() *KVStore {
	return &KVStore{values: make(map[string][]byte)}
}

func (s *KVStore) Get(_ context.Context, key string, dest any) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, fmt.Errorf("%w: key is required", kv.ErrStore)
	}

	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if err := sonic.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("%w: decode key=%s: %v", kv.ErrStore, key, err)
	}
	return true, nil
}

func (s *KVStore) Set(_ context.Context, key string, value any) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: key is required", kv.ErrStore)
	}

	raw, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode key=%s: %v", kv.ErrStore, key, err)
	}

	s.mu.Lock()
	s.values[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.values, strings.TrimSpace(key))
	s.mu.Unlock()
	return nil
}
