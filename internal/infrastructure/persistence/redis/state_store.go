package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"z-novel-workspace/internal/domain/repository"
)

// StateStore 以 Redis 字符串键保存工作区状态记录
type StateStore struct {
	client *Client
	prefix string
}

var _ repository.StateRepository = (*StateStore)(nil)

// NewStateStore 创建状态存储，键格式为 <prefix>:<key>
func NewStateStore(client *Client, prefix string) *StateStore {
	return &StateStore{client: client, prefix: prefix}
}

func (s *StateStore) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

// Load 读取记录，键不存在时返回 false
func (s *StateStore) Load(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.client.Get(ctx, s.key(key))
	if err != nil {
		if IsNil(err) {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

// Save 覆盖写入整条记录，不设置过期时间
func (s *StateStore) Save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.key(key), raw, 0); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete 删除记录
func (s *StateStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key))
}

// Ping 检查 Redis 连接
func (s *StateStore) Ping(ctx context.Context) error {
	return s.client.HealthCheck(ctx)
}
