// Package entity 定义领域实体
package entity

// Project 小说项目（后端记录的客户端投影）
type Project struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Genre         string `json:"genre"`
	Description   string `json:"description,omitempty"`
	Author        string `json:"author,omitempty"`
	ExpectedWords int    `json:"expected_words,omitempty"`
	WordCount     int    `json:"word_count"`
	ChapterCount  int    `json:"chapter_count"`
}

// ProjectPatch 项目局部更新
type ProjectPatch struct {
	Title         *string `json:"title,omitempty"`
	Genre         *string `json:"genre,omitempty"`
	Description   *string `json:"description,omitempty"`
	Author        *string `json:"author,omitempty"`
	ExpectedWords *int    `json:"expected_words,omitempty"`
}

// Apply 将补丁合并到项目副本并返回
func (p ProjectPatch) Apply(pr Project) Project {
	if p.Title != nil {
		pr.Title = *p.Title
	}
	if p.Genre != nil {
		pr.Genre = *p.Genre
	}
	if p.Description != nil {
		pr.Description = *p.Description
	}
	if p.Author != nil {
		pr.Author = *p.Author
	}
	if p.ExpectedWords != nil {
		pr.ExpectedWords = *p.ExpectedWords
	}
	return pr
}
