// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"

	"z-novel-workspace/internal/interfaces/http/handler"
)

// RegisterWorkspaceRoutes 注册工作台路由
func RegisterWorkspaceRoutes(ws *gin.RouterGroup, h *RouterHandlers) {
	ws.GET("/endpoints/resolve", handler.ResolveEndpoints)

	// 偏好设置
	ws.GET("/settings", h.Settings.GetSettings)
	ws.PATCH("/settings", h.Settings.UpdateSettings)

	// 模型服务商
	providers := ws.Group("/providers")
	{
		providers.GET("", h.Provider.ListProviders)
		providers.POST("", h.Provider.CreateProvider)
		providers.PUT("/reorder", h.Provider.ReorderProviders)
		providers.POST("/check-key", h.Provider.CheckKey)
		providers.PUT("/:id", h.Provider.UpdateProvider)
		providers.DELETE("/:id", h.Provider.DeleteProvider)
		providers.POST("/:id/check-key", h.Provider.CheckProviderKey)
		providers.POST("/:id/discover-models", h.Provider.DiscoverModels)
		providers.GET("/:id/models", h.Provider.ListModels)
		providers.POST("/:id/models", h.Provider.CreateModel)
	}

	models := ws.Group("/models")
	{
		models.PUT("/:id", h.Provider.UpdateModel)
		models.DELETE("/:id", h.Provider.DeleteModel)
	}

	// 当前项目
	ws.GET("/project", h.Project.GetCurrentProject)
	ws.PUT("/project", h.Project.SelectProject)
	ws.DELETE("/project", h.Project.ClearProject)

	projects := ws.Group("/projects")
	{
		projects.GET("", h.Project.ListProjects)
		projects.PUT("/:id", h.Project.UpdateProject)
		projects.DELETE("/:id", h.Project.DeleteProject)
	}

	// 提示词模板
	prompts := ws.Group("/prompt-templates")
	{
		prompts.GET("", h.Prompt.ListTemplates)
		prompts.POST("", h.Prompt.CreateTemplate)
		prompts.GET("/default", h.Prompt.DefaultTemplate)
		prompts.GET("/by-category", h.Prompt.TemplatesByCategory)
		prompts.PUT("/:id", h.Prompt.UpdateTemplate)
		prompts.DELETE("/:id", h.Prompt.DeleteTemplate)
	}

	// 对话
	conversations := ws.Group("/conversations")
	{
		conversations.GET("", h.Conversation.ListConversations)
		conversations.POST("/new", h.Conversation.StartNew)
		conversations.POST("/draft", h.Conversation.CreateDraft)
		conversations.GET("/current", h.Conversation.Current)
		conversations.PUT("/current", h.Conversation.SetCurrent)
		conversations.POST("/current/messages", h.Conversation.AddMessage)
		conversations.DELETE("/current/messages", h.Conversation.ClearMessages)
		conversations.GET("/:id/messages", h.Conversation.ListMessages)
		conversations.POST("/:id/load", h.Conversation.LoadConversation)
		conversations.PUT("/:id", h.Conversation.RenameConversation)
		conversations.DELETE("/:id", h.Conversation.DeleteConversation)
	}

	ws.POST("/chat", h.Conversation.Chat)
	ws.POST("/chat/stream", h.Stream.ChatStream)

	// 创作助手
	assistant := ws.Group("/assistant")
	{
		assistant.GET("", h.Chapter.AssistantState)
		assistant.POST("/toggle", h.Chapter.ToggleAssistant)
		assistant.POST("/send", h.Conversation.AssistantSend)
	}

	// 编辑会话
	chapters := ws.Group("/chapters")
	{
		chapters.GET("", h.Chapter.ListOpenChapters)
		chapters.DELETE("", h.Chapter.CloseAllChapters)
		chapters.POST("/open", h.Chapter.OpenChapter)
		chapters.POST("/:id/activate", h.Chapter.ActivateChapter)
		chapters.PATCH("/:id", h.Chapter.UpdateChapter)
		chapters.DELETE("/:id", h.Chapter.CloseChapter)
	}

	// 编辑器桥接
	editor := ws.Group("/editor")
	{
		editor.GET("/events", h.Editor.Events)
		editor.DELETE("", h.Editor.Unbind)
		editor.POST("/insert", h.Editor.Insert)
		editor.PUT("/content", h.Editor.ReportContent)
		editor.GET("/selection", h.Editor.GetSelection)
		editor.PUT("/selection", h.Editor.UpdateSelection)
		editor.DELETE("/selection", h.Editor.ClearSelection)
	}
}
