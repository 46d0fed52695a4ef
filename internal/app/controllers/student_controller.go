package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/catequesis/internal/app/auth"
	"github.com/yigit/catequesis/internal/app/models/dto"
	"github.com/yigit/catequesis/internal/app/services"
	"github.com/yigit/catequesis/internal/middleware"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
	"github.com/yigit/catequesis/internal/pkg/helpers"
)

// Student paths
const (
	AddStudentPath    = "/agregar_catequizando"
	EditStudentPath   = "/editar_catequizando/"
	DeleteStudentPath = "/eliminar_catequizando/"
)

// StudentController handles the student pages
type StudentController struct {
	studentService *services.StudentService
	groupService   *services.GroupService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService, groupService *services.GroupService) *StudentController {
	return &StudentController{
		studentService: studentService,
		groupService:   groupService,
	}
}

// Index lists the students visible to the caller
func (c *StudentController) Index(ctx *gin.Context) {
	students, err := c.studentService.ListVisible(ctx.Request.Context(), middleware.CurrentIdentity(ctx))
	if err != nil {
		// The home page renders its errors; it is the fallback of every redirect
		middleware.RenderError(ctx, err)
		return
	}
	middleware.RenderOK(ctx, "index", dto.StudentListPage{Students: students})
}

// AddPage renders the enrollment form
func (c *StudentController) AddPage(ctx *gin.Context) {
	groups, err := c.groupService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleError(ctx, err, auth.HomePath)
		return
	}
	middleware.RenderOK(ctx, "agregar_catequizando", dto.StudentFormPage{Groups: groups})
}

// Add enrolls a student
func (c *StudentController) Add(ctx *gin.Context) {
	var form dto.StudentForm
	if err := middleware.BindForm(ctx, &form); err != nil {
		middleware.HandleError(ctx, err, AddStudentPath)
		return
	}

	if _, err := c.studentService.Create(ctx.Request.Context(), form); err != nil {
		middleware.HandleError(ctx, err, AddStudentPath)
		return
	}

	middleware.AddFlash(ctx, dto.FlashSuccess, dto.MsgStudentAdded)
	middleware.Redirect(ctx, http.StatusSeeOther, auth.HomePath)
}

// EditPage renders the edit form of one student
func (c *StudentController) EditPage(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx.Param("id"))
	if err != nil {
		middleware.HandleError(ctx, apperrors.NewCustomError(err, dto.MsgInvalidID), auth.HomePath)
		return
	}

	student, err := c.studentService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleError(ctx, err, auth.HomePath)
		return
	}

	groups, err := c.groupService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleError(ctx, err, auth.HomePath)
		return
	}

	middleware.RenderOK(ctx, "editar_catequizando", dto.StudentFormPage{Student: student, Groups: groups})
}

// Edit updates one student
func (c *StudentController) Edit(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx.Param("id"))
	if err != nil {
		middleware.HandleError(ctx, apperrors.NewCustomError(err, dto.MsgInvalidID), auth.HomePath)
		return
	}
	fallback := EditStudentPath + id.String()

	var form dto.StudentForm
	if err := middleware.BindForm(ctx, &form); err != nil {
		middleware.HandleError(ctx, err, fallback)
		return
	}

	if _, err := c.studentService.Update(ctx.Request.Context(), id, form); err != nil {
		if apperrors.Is(err, apperrors.ErrStudentNotFound) {
			fallback = auth.HomePath
		}
		middleware.HandleError(ctx, err, fallback)
		return
	}

	middleware.AddFlash(ctx, dto.FlashSuccess, dto.MsgStudentUpdated)
	middleware.Redirect(ctx, http.StatusSeeOther, auth.HomePath)
}

// Delete removes a student and every account linked to it
func (c *StudentController) Delete(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx.Param("id"))
	if err != nil {
		middleware.HandleError(ctx, apperrors.NewCustomError(err, dto.MsgInvalidID), auth.HomePath)
		return
	}

	if err := c.studentService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleError(ctx, err, auth.HomePath)
		return
	}

	middleware.AddFlash(ctx, dto.FlashSuccess, dto.MsgStudentDeleted)
	middleware.Redirect(ctx, http.StatusSeeOther, auth.HomePath)
}
