// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"z-novel-workspace/internal/domain/entity"
)

// SelectProjectRequest 选择当前项目请求
type SelectProjectRequest struct {
	ID int64 `json:"id" binding:"required,gt=0"`
}

// UpdateProjectRequest 更新项目请求
type UpdateProjectRequest struct {
	Title         *string `json:"title,omitempty" binding:"omitempty,max=255"`
	Genre         *string `json:"genre,omitempty" binding:"omitempty,max=50"`
	Description   *string `json:"description,omitempty" binding:"omitempty,max=5000"`
	Author        *string `json:"author,omitempty" binding:"omitempty,max=100"`
	ExpectedWords *int    `json:"expected_words,omitempty" binding:"omitempty,gte=0"`
}

// ToPatch 转换为项目补丁
func (r *UpdateProjectRequest) ToPatch() entity.ProjectPatch {
	return entity.ProjectPatch{
		Title:         r.Title,
		Genre:         r.Genre,
		Description:   r.Description,
		Author:        r.Author,
		ExpectedWords: r.ExpectedWords,
	}
}

// CurrentProjectResponse 当前项目响应，未选择项目时 project 为空
type CurrentProjectResponse struct {
	HasProject bool            `json:"has_project"`
	Project    *entity.Project `json:"project,omitempty"`
}

// ProjectListResponse 项目列表响应
type ProjectListResponse struct {
	Projects []*entity.Project `json:"projects"`
}

// PromptTemplateListResponse 提示词模板列表响应
type PromptTemplateListResponse struct {
	Templates []entity.PromptTemplate `json:"templates"`
}

// PromptTemplateGroupsResponse 按分类分组的模板
type PromptTemplateGroupsResponse struct {
	Categories map[string][]entity.PromptTemplate `json:"categories"`
}
