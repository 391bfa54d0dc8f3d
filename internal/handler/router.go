package handler

import "github.com/gin-gonic/gin"

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Departments *DepartmentHandler
	Courses     *CourseHandler
	Wizard      *WizardHandler
	Instructors *InstructorHandler
	Trainees    *TraineeHandler
	Results     *ResultHandler
	Lookups     *LookupHandler
	Images      *ImageHandler
}

// RegisterRoutes mounts the API on the given group.
func RegisterRoutes(api *gin.RouterGroup, h Handlers) {
	departments := api.Group("/departments")
	departments.GET("", h.Departments.List)
	departments.POST("", h.Departments.Create)
	departments.GET("/:id", h.Departments.Get)
	departments.PUT("/:id", h.Departments.Update)
	departments.DELETE("/:id", h.Departments.Delete)

	courses := api.Group("/courses")
	courses.GET("", h.Courses.List)
	courses.POST("/wizard", h.Wizard.Start)
	courses.DELETE("/wizard", h.Wizard.Cancel)
	courses.GET("/wizard/instructor", h.Wizard.Pending)
	courses.POST("/wizard/instructor", h.Wizard.Complete)
	courses.GET("/:id", h.Courses.Get)
	courses.PUT("/:id", h.Courses.Update)
	courses.DELETE("/:id", h.Courses.Delete)
	courses.GET("/:id/instructors", h.Courses.Instructors)
	courses.GET("/:id/results", h.Results.Roster)
	courses.POST("/:id/results", h.Results.Enroll)
	courses.GET("/:id/results/available", h.Results.Available)
	courses.GET("/:id/results/export", h.Results.Export)
	courses.GET("/:id/results/:traineeId", h.Results.Get)
	courses.PUT("/:id/results/:traineeId", h.Results.UpdateDegree)

	instructors := api.Group("/instructors")
	instructors.GET("", h.Instructors.List)
	instructors.POST("", h.Instructors.Create)
	instructors.GET("/:id", h.Instructors.Get)
	instructors.PUT("/:id", h.Instructors.Update)
	instructors.DELETE("/:id", h.Instructors.Delete)

	trainees := api.Group("/trainees")
	trainees.GET("", h.Trainees.List)
	trainees.POST("", h.Trainees.Create)
	trainees.GET("/:id", h.Trainees.Get)
	trainees.PUT("/:id", h.Trainees.Update)
	trainees.DELETE("/:id", h.Trainees.Delete)

	lookups := api.Group("/lookups")
	lookups.GET("/departments", h.Lookups.Departments)
	lookups.GET("/courses", h.Lookups.Courses)

	api.GET("/images/:name", h.Images.Serve)
}
