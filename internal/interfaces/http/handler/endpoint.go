// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"z-novel-workspace/internal/application/endpoint"
	"z-novel-workspace/internal/interfaces/http/dto"
)

// ResolveEndpoints 根据基础地址推导对话与模型列表端点
// @Summary 解析服务商端点
// @Tags Providers
// @Produce json
// @Param base_url query string false "服务商基础地址"
// @Success 200 {object} dto.Response[endpoint.Endpoints]
// @Router /workspace/endpoints/resolve [get]
func ResolveEndpoints(c *gin.Context) {
	dto.Success(c, endpoint.Resolve(c.Query("base_url")))
}
