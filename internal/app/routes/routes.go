package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/catequesis/internal/app/auth"
	"github.com/yigit/catequesis/internal/app/controllers"
	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/middleware"
)

// StoragePingTimeout bounds the storage check run before data-touching handlers
const StoragePingTimeout = 2 * time.Second

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth     *controllers.AuthController
	Students *controllers.StudentController
	Groups   *controllers.GroupController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	sessions *middleware.SessionMiddleware,
	store repositories.Store,
) {
	router.Use(sessions.LoadSession())

	anyRole := sessions.Guard(auth.AnyRole())
	adminOnly := sessions.Guard(auth.OnlyRole(models.RoleAdmin))
	storage := middleware.RequireStorage(store, StoragePingTimeout)

	// --- Session routes ---
	router.GET(auth.LoginPath, ctrl.Auth.LoginPage)
	router.POST(auth.LoginPath, storage, ctrl.Auth.Login)
	router.GET(controllers.LogoutPath, anyRole, ctrl.Auth.Logout)

	// --- Authenticated routes ---
	router.GET(auth.HomePath, anyRole, storage, ctrl.Students.Index)

	// --- Admin routes ---
	admin := router.Group("")
	admin.Use(adminOnly, storage)
	{
		admin.GET(controllers.RegisterUserPath, ctrl.Auth.RegisterUserPage)
		admin.POST(controllers.RegisterUserPath, ctrl.Auth.RegisterUser)

		admin.GET(controllers.AddStudentPath, ctrl.Students.AddPage)
		admin.POST(controllers.AddStudentPath, ctrl.Students.Add)
		admin.GET(controllers.EditStudentPath+":id", ctrl.Students.EditPage)
		admin.POST(controllers.EditStudentPath+":id", ctrl.Students.Edit)
		admin.POST(controllers.DeleteStudentPath+":id", ctrl.Students.Delete)

		admin.GET(controllers.GroupsPath, ctrl.Groups.List)
		admin.GET(controllers.AddGroupPath, ctrl.Groups.AddPage)
		admin.POST(controllers.AddGroupPath, ctrl.Groups.Add)
	}
}
