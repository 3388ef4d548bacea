// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"z-novel-workspace/internal/application/settings"
	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/interfaces/http/dto"
)

// SettingsHandler 系统设置处理器
type SettingsHandler struct {
	store *settings.Store
}

// NewSettingsHandler 创建系统设置处理器
func NewSettingsHandler(store *settings.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// GetSettings 获取系统设置
// @Summary 获取系统设置
// @Tags Settings
// @Produce json
// @Success 200 {object} dto.Response[entity.Settings]
// @Router /workspace/settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	dto.Success(c, h.store.Get())
}

// UpdateSettings 浅合并更新系统设置
// @Summary 更新系统设置
// @Description 出现的字段整体替换；写入本地存储成功后才生效
// @Tags Settings
// @Accept json
// @Produce json
// @Param body body entity.SettingsPatch true "设置补丁"
// @Success 200 {object} dto.Response[entity.Settings]
// @Failure 503 {object} dto.ErrorResponse
// @Router /workspace/settings [patch]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var patch entity.SettingsPatch
	if !dto.BindJSON(c, &patch) {
		return
	}

	updated, err := h.store.Update(c.Request.Context(), patch)
	if err != nil {
		writeError(c, "failed to update settings", err)
		return
	}
	dto.Success(c, updated)
}
