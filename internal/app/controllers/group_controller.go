package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/catequesis/internal/app/auth"
	"github.com/yigit/catequesis/internal/app/models/dto"
	"github.com/yigit/catequesis/internal/app/services"
	"github.com/yigit/catequesis/internal/middleware"
)

// Group paths
const (
	GroupsPath   = "/grupos"
	AddGroupPath = "/agregar_grupo"
)

// GroupController handles the group pages
type GroupController struct {
	groupService *services.GroupService
}

// NewGroupController creates a new GroupController
func NewGroupController(groupService *services.GroupService) *GroupController {
	return &GroupController{groupService: groupService}
}

// List renders every group with its catechist
func (c *GroupController) List(ctx *gin.Context) {
	groups, err := c.groupService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleError(ctx, err, auth.HomePath)
		return
	}
	middleware.RenderOK(ctx, "grupos", dto.GroupListPage{Groups: groups})
}

// AddPage renders the group form with the selectable catechists
func (c *GroupController) AddPage(ctx *gin.Context) {
	catechists, err := c.groupService.ListCatechists(ctx.Request.Context())
	if err != nil {
		middleware.HandleError(ctx, err, GroupsPath)
		return
	}
	middleware.RenderOK(ctx, "agregar_grupo", dto.GroupFormPage{Catechists: catechists})
}

// Add creates a group
func (c *GroupController) Add(ctx *gin.Context) {
	var form dto.GroupForm
	if err := middleware.BindForm(ctx, &form); err != nil {
		middleware.HandleError(ctx, err, AddGroupPath)
		return
	}

	if _, err := c.groupService.Create(ctx.Request.Context(), form); err != nil {
		middleware.HandleError(ctx, err, AddGroupPath)
		return
	}

	middleware.AddFlash(ctx, dto.FlashSuccess, dto.MsgGroupCreated)
	middleware.Redirect(ctx, http.StatusSeeOther, GroupsPath)
}
