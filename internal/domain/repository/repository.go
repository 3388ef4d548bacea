// Package repository 定义数据访问层接口
// 工作区不直接持有数据库，远端持久化全部委托给 REST 后端，
// 本地只保存少量需要跨重启保留的状态记录。
package repository

import (
	"context"
)

// 本地持久化状态键
const (
	StateKeySettings       = "systemSettings"
	StateKeyCurrentProject = "currentProject"
)

// StateRepository 本地持久化的单记录键值存储
type StateRepository interface {
	// Load 读取 key 对应记录并反序列化到 dst，记录不存在时返回 false
	Load(ctx context.Context, key string, dst any) (bool, error)
	// Save 序列化并覆盖写入整条记录
	Save(ctx context.Context, key string, value any) error
	// Delete 删除记录，不存在时不报错
	Delete(ctx context.Context, key string) error
	// Ping 检查存储可用性
	Ping(ctx context.Context) error
}
