package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/aadi90392/yoga-master-full/internal/interface/http"
)

type UserModule struct {
	Users       *handlers.UserHandler
	Instructors *handlers.InstructorHandler
	Guards      Guards
}

func NewUserModule(users *handlers.UserHandler, instructors *handlers.InstructorHandler, g Guards) *UserModule {
	return &UserModule{Users: users, Instructors: instructors, Guards: g}
}

func (m *UserModule) Name() string { return "users" }

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.GET("/instructors", m.Users.Instructors)

	authed := rg.Group("/", m.Guards.Authed()...)
	{
		authed.GET("/user/:email", m.Users.GetByEmail)
		authed.PUT("/update-user/:id", m.Users.Update)
		authed.POST("/upload-photo", m.Guards.PerUser(10), m.Users.UploadPhoto)
		authed.POST("/as-instructor", m.Instructors.Apply)
		authed.GET("/applied-instructors/:email", m.Instructors.GetByEmail)
	}

	admin := rg.Group("/", m.Guards.Admin()...)
	{
		admin.GET("/users", m.Users.List)
		admin.GET("/users/:id", m.Users.GetByID)
		admin.DELETE("/delete-user/:id", m.Users.Delete)
		admin.GET("/applied-instructors", m.Instructors.List)
		admin.PATCH("/make-instructor", m.Instructors.MakeInstructor)
		admin.DELETE("/delete-application/:id", m.Instructors.DeleteApplication)
	}
}
