// Package bolt 基于 bbolt 的本地状态存储
// 所有记录以 JSON 形式保存在同一个 bucket 中，写入是事务性的
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"z-novel-workspace/internal/domain/repository"
)

var (
	tracer = otel.Tracer("bolt")

	bucketState = []byte("state")
)

// Store 本地状态存储
type Store struct {
	db *bolt.DB
}

var _ repository.StateRepository = (*Store)(nil)

// NewStore 打开（或创建）bbolt 数据库，父目录不存在时自动创建
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketState)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("bbolt init bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close 关闭数据库
func (s *Store) Close() error {
	return s.db.Close()
}

// Load 读取记录，不存在时返回 false
func (s *Store) Load(ctx context.Context, key string, dst any) (bool, error) {
	_, span := tracer.Start(ctx, "bolt.Load", trace.WithAttributes(attribute.String("state.key", key)))
	defer span.End()

	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		// bbolt 返回的切片只在事务内有效
		if v := tx.Bucket(bucketState).Get([]byte(key)); v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("bbolt view %s: %w", key, err)
	}
	if raw == nil {
		return false, nil
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

// Save 覆盖写入整条记录
func (s *Store) Save(ctx context.Context, key string, value any) error {
	_, span := tracer.Start(ctx, "bolt.Save", trace.WithAttributes(attribute.String("state.key", key)))
	defer span.End()

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Put([]byte(key), raw)
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("bbolt put %s: %w", key, err)
	}
	return nil
}

// Delete 删除记录
func (s *Store) Delete(ctx context.Context, key string) error {
	_, span := tracer.Start(ctx, "bolt.Delete", trace.WithAttributes(attribute.String("state.key", key)))
	defer span.End()

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Delete([]byte(key))
	})
}

// Ping 检查数据库仍可读
func (s *Store) Ping(ctx context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketState) == nil {
			return fmt.Errorf("bucket %s missing", bucketState)
		}
		return nil
	})
}
