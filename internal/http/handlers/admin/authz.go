package admin

import (
	"errors"

	"github.com/aipath-api/internal/authz"
	"github.com/aipath-api/internal/http/response"
	"github.com/aipath-api/internal/logger"

	"github.com/gin-gonic/gin"
)

type authzSetAdminRolesPayload struct {
	Roles []string `json:"roles"`
}

// GetAuthzMe 获取当前管理员权限快照
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}
	policies, err := h.AuthzService.GetAdminPolicies(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}

	response.Success(c, gin.H{
		"admin_id": adminID,
		"is_super": currentAdminIsSuper(c),
		"roles":    roles,
		"policies": policies,
	})
}

// ListAuthzRoles 获取角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}
	response.Success(c, roles)
}

// SetAuthzAdminRoles 覆盖设置管理员角色
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	operatorID, ok := getAdminID(c)
	if !ok {
		return
	}
	targetID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req authzSetAdminRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	admin, err := h.AdminRepo.GetByID(targetID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "error.not_found", nil)
		return
	}

	if err := h.AuthzService.SetAdminRoles(targetID, req.Roles); err != nil {
		if errors.Is(err, authz.ErrRoleNotFound) {
			respondError(c, response.CodeBadRequest, "error.role_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(targetID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}

	logger.Infow("admin_authz_admin_roles_set",
		"operator_admin_id", operatorID,
		"target_admin_id", targetID,
		"roles", roles,
	)
	response.Success(c, gin.H{"admin_id": targetID, "roles": roles})
}
