package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/controllers"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/middleware"
)

// Controllers groups every HTTP handler the router mounts
type Controllers struct {
	Auth         *controllers.AuthController
	Institution  *controllers.InstitutionController
	Program      *controllers.ProgramController
	Application  *controllers.ApplicationController
	Student      *controllers.StudentController
	Professor    *controllers.ProfessorController
	Document     *controllers.DocumentController
	Notification *controllers.NotificationController
	CommonInfo   *controllers.CommonInfoController
	// WebSocket upgrades an authenticated request to the notification stream
	WebSocket gin.HandlerFunc
}

var (
	staffRoles        = []models.Role{models.RoleInstitution, models.RoleProfessor, models.RoleAdmissionOfficer}
	staffOrAdminRoles = []models.Role{models.RoleInstitution, models.RoleProfessor, models.RoleAdmissionOfficer, models.RoleAdmin}
)

// SetupRouter configures all application routes under /api/v1
func SetupRouter(
	router *gin.Engine,
	c Controllers,
	authMiddleware *middleware.AuthMiddleware,
	authLimiter *middleware.RateLimiter,
) {
	v1 := router.Group("/api/v1")

	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if authLimiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{authLimiter.Handler(), h}
	}
	jwt := authMiddleware.JWTAuth()
	adminOnly := authMiddleware.RoleRequired(models.RoleAdmin)
	institutionOrAdmin := authMiddleware.RoleRequired(models.RoleInstitution, models.RoleAdmin)
	staffOrAdmin := authMiddleware.RoleRequired(staffOrAdminRoles...)
	staffOnly := authMiddleware.RoleRequired(staffRoles...)
	studentOnly := authMiddleware.RoleRequired(models.RoleStudent)

	// --- Auth ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", limited(c.Auth.Login)...)
		auth.POST("/refresh", limited(c.Auth.RefreshToken)...)
		auth.POST("/register/staff", limited(c.Auth.RegisterStaff)...)
		auth.GET("/me", jwt, c.Auth.Me)
		auth.POST("/logout", jwt, c.Auth.Logout)
	}

	// --- Institutions, programs and review ---
	institution := v1.Group("/institution")
	{
		institution.POST("/institutionregister", limited(c.Institution.Register)...)
		institution.GET("/institutionregister", jwt, adminOnly, c.Institution.List)
		institution.PUT("/institutionregister/update/:role", jwt, adminOnly, c.Institution.SetRole)
		institution.PUT("/institutionregister/updatePending", jwt, adminOnly, c.Institution.UpdatePending)

		institution.GET("/staff", jwt, institutionOrAdmin, c.Institution.ListStaff)
		institution.PUT("/staff/updatePending", jwt, institutionOrAdmin, c.Institution.UpdateStaffPending)

		institution.GET("/programs", c.Program.List)
		institution.GET("/programs/:id", c.Program.Get)
		institution.POST("/programs", jwt, institutionOrAdmin, c.Program.Create)
		institution.PUT("/programs/:id", jwt, institutionOrAdmin, c.Program.Update)
		institution.DELETE("/programs/:id", jwt, institutionOrAdmin, c.Program.Delete)
		institution.GET("/programs/requirments/:id", c.Program.Requirements)
		institution.POST("/programs/requirements/:pId", jwt, institutionOrAdmin, c.Program.AddRequirements)

		institution.GET("/application", jwt, staffOrAdmin, c.Application.List)
		institution.GET("/application/:id", jwt, staffOrAdmin, c.Application.Get)
		institution.GET("/application/:id/documents", jwt, staffOrAdmin, c.Document.ListForApplication)
		institution.PUT("/documents/:id/verify", jwt, staffOrAdmin, c.Document.Verify)
	}

	// --- Students ---
	student := v1.Group("/student")
	{
		student.POST("/studentregister", limited(c.Student.Register)...)
		student.GET("/studentregister", jwt, adminOnly, c.Student.List)

		student.GET("/students/:id", jwt, c.Student.GetByAccount)
		student.PUT("/students/:id", jwt, c.Student.UpdateProfile)
		student.GET("/studentuid/:id", jwt, c.Student.GetByProfileID)

		student.POST("/education", jwt, studentOnly, c.Student.AddEducation)
		student.GET("/education/:id", jwt, c.Student.ListEducation)

		student.POST("/savedprogram/", jwt, studentOnly, c.Student.SaveProgram)
		student.GET("/savedprogram/:id", jwt, c.Student.ListSavedPrograms)
		student.DELETE("/savedprogram/:programId", jwt, studentOnly, c.Student.RemoveSavedProgram)

		student.GET("/getapplicatioins", jwt, c.Application.List)
		student.GET("/getApplicatioinsProgramNameByPid/:id", jwt, c.Program.Title)
		student.POST("/submitapplication", jwt, studentOnly, c.Application.Submit)
		student.PUT("/updateapplication/status", jwt, staffOrAdmin, c.Application.UpdateStatus)
		student.POST("/addcomment", jwt, staffOrAdmin, c.Application.AddComment)
		student.GET("/getcomment/:id", jwt, c.Application.ListComments)

		student.POST("/documents", jwt, studentOnly, c.Document.Upload)
		student.GET("/documents", jwt, studentOnly, c.Document.ListOwn)
	}

	// --- Professors ---
	professor := v1.Group("/professor", jwt)
	{
		professor.GET("/professorinfo", c.Professor.List)
		professor.GET("/professorinfo/:id", c.Professor.Get)
		professor.POST("/professorinfo",
			authMiddleware.RoleRequired(models.RoleProfessor, models.RoleInstitution, models.RoleAdmin),
			c.Professor.Create)
		professor.PUT("/professorinfo/:id", c.Professor.Update)
		professor.DELETE("/professorinfo/:id", c.Professor.Delete)
		professor.GET("/institutionname/:id", c.Institution.InstitutionName)
		professor.GET("/pendingapplications", staffOnly, c.Application.Pending)
	}

	// --- Client storage and public counters ---
	storage := v1.Group("/client_storage", jwt)
	{
		storage.GET("/getinfo/:id", c.CommonInfo.GetStorage)
		storage.POST("/postinfo/:id", c.CommonInfo.PutStorage)
	}

	commonInfo := v1.Group("/commoninfo")
	{
		commonInfo.GET("/programcount", c.CommonInfo.ProgramCount)
		commonInfo.GET("/institutioncount", c.CommonInfo.InstitutionCount)
		commonInfo.GET("/studentcount", c.CommonInfo.StudentCount)
		commonInfo.GET("/countrycount", c.CommonInfo.CountryCount)
	}

	// --- Documents ---
	v1.GET("/documents/:id/file", jwt, c.Document.Download)

	// --- Notifications ---
	notifications := v1.Group("/notifications", jwt)
	{
		notifications.GET("", c.Notification.List)
		notifications.PUT("/:id/read", c.Notification.MarkRead)
		if c.WebSocket != nil {
			notifications.GET("/ws", c.WebSocket)
		}
	}
}
