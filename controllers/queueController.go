package controllers

import (
	"OPDQueue/handlers"
	"OPDQueue/middlewares"
	"OPDQueue/models"

	"github.com/gin-gonic/gin"
)

// SetupQueueRoutes wires the queue engine, report and directory endpoints.
// Staff-only operations sit behind the PASETO role check; everything else is
// reachable with the service bearer token alone.
func SetupQueueRoutes(router *gin.Engine, tokenHandler *handlers.TokenHandler, reportHandler *handlers.ReportHandler, directoryHandler *handlers.DirectoryHandler) {
	staffOnly := []gin.HandlerFunc{
		middlewares.TokenAuthMiddleware(),
		middlewares.RoleAuthMiddleware(models.RoleStaff),
	}

	// Booking admission and reads.
	router.POST("/tokens", tokenHandler.CreateToken)
	router.GET("/tokens/:id", tokenHandler.GetTokenByID)
	router.PUT("/tokens/:id", tokenHandler.UpdateToken)
	router.DELETE("/tokens/:id", append(staffOnly, tokenHandler.DeleteToken)...)
	router.POST("/tokens/checkin", append(staffOnly, tokenHandler.CheckInToken)...)

	// Live queue for staff displays.
	router.GET("/queue", append(staffOnly, tokenHandler.GetActiveQueue)...)

	// Reports.
	router.POST("/reports/request", append(staffOnly, reportHandler.CreateReportRequest)...)
	router.GET("/reports", reportHandler.GetReportFeed)
	router.GET("/reports/:id", reportHandler.GetReportByID)

	// Directory.
	router.GET("/doctors", directoryHandler.GetAllDoctors)
	router.GET("/doctors/:id", directoryHandler.GetDoctorByID)
	router.POST("/doctors", append(staffOnly, directoryHandler.CreateDoctor)...)
	router.PUT("/doctors/:id", append(staffOnly, directoryHandler.UpdateDoctor)...)
	router.DELETE("/doctors/:id", append(staffOnly, directoryHandler.DeleteDoctor)...)

	router.GET("/departments", directoryHandler.GetAllDepartments)
	router.GET("/departments/:id", directoryHandler.GetDepartmentByID)
	router.POST("/departments", append(staffOnly, directoryHandler.CreateDepartment)...)
}
