package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/service"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/pkg/response"
)

// MemberHandler 会员模块 HTTP 处理器
type MemberHandler struct {
	memberSvc service.MemberService
}

// NewMemberHandler 创建 MemberHandler
func NewMemberHandler(memberSvc service.MemberService) *MemberHandler {
	return &MemberHandler{memberSvc: memberSvc}
}

// GetMe 当前会员资料
// GET /api/v1/members/me
func (h *MemberHandler) GetMe(c *gin.Context) {
	memberID, ok := MustGetMemberID(c)
	if !ok {
		return
	}

	result, err := h.memberSvc.GetProfile(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			response.NotFound(c, 11004, "会员不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// GetMyState 当前会员状态（余额、名额、连击、等级）
// GET /api/v1/members/me/state
func (h *MemberHandler) GetMyState(c *gin.Context) {
	memberID, ok := MustGetMemberID(c)
	if !ok {
		return
	}

	result, err := h.memberSvc.GetState(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			response.NotFound(c, 11004, "会员不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// GetMemberState 指定会员状态（管理员）
// GET /api/v1/admin/members/:id/state
func (h *MemberHandler) GetMemberState(c *gin.Context) {
	result, err := h.memberSvc.GetState(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			response.NotFound(c, 11004, "会员不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ListMembers 会员列表（管理员）
// GET /api/v1/admin/members
func (h *MemberHandler) ListMembers(c *gin.Context) {
	page, pageSize := parsePagination(c)

	list, total, err := h.memberSvc.List(c.Request.Context(), page, pageSize)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, page, pageSize)
}

// [自证通过] internal/api/handler/member_handler.go
