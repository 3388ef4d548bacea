// Package entity 定义领域实体
package entity

// Chapter 已持久化章节在编辑会话中的投影
type Chapter struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
	Order     int    `json:"order"`
	VolumeID  int64  `json:"volume_id,omitempty"`
	ProjectID int64  `json:"project_id,omitempty"`
}

// ChapterPatch 章节局部更新，nil 字段保持不变
type ChapterPatch struct {
	Title     *string `json:"title,omitempty"`
	Content   *string `json:"content,omitempty"`
	WordCount *int    `json:"word_count,omitempty"`
	Order     *int    `json:"order,omitempty"`
	VolumeID  *int64  `json:"volume_id,omitempty"`
}

// Apply 将补丁合并到章节副本并返回
func (p ChapterPatch) Apply(c Chapter) Chapter {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Content != nil {
		c.Content = *p.Content
		if p.WordCount == nil {
			c.WordCount = CountWords(c.Content)
		}
	}
	if p.WordCount != nil {
		c.WordCount = *p.WordCount
	}
	if p.Order != nil {
		c.Order = *p.Order
	}
	if p.VolumeID != nil {
		c.VolumeID = *p.VolumeID
	}
	return c
}

// CountWords 按字符统计字数（中文写作习惯，忽略空白）
func CountWords(content string) int {
	n := 0
	for _, r := range content {
		switch r {
		case ' ', '\t', '\n', '\r', '　':
			continue
		}
		n++
	}
	return n
}
