// Package entity 定义领域实体
package entity

// Role 对话角色枚举
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid 判断角色是否为后端接受的取值
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}
