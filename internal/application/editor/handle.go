// Package editor 管理多章节编辑会话与当前绑定的编辑器实例
package editor

// Handle 编辑器实例的生命周期能力
// 会话管理器只持有弱引用：不复制、不持久化、不负责销毁
type Handle interface {
	// Ready 编辑器是否已完成初始化
	Ready() bool
	// Content 返回编辑器当前内容
	Content() string
	// SetContent 整体替换编辑器内容
	SetContent(markup string) error
	// Destroy 释放编辑器资源，由编辑器宿主调用
	Destroy()
}

// Inserter 可选能力：在光标处插入 HTML
type Inserter interface {
	InsertHTML(markup string) error
}

// CanInsert 判断编辑器实例是否具备插入能力
func CanInsert(h Handle) (Inserter, bool) {
	if h == nil {
		return nil, false
	}
	ins, ok := h.(Inserter)
	return ins, ok
}
