package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aadi90392/yoga-master-full/pkg/helpers"
)

// Module is a feature area that mounts its own routes.
type Module interface {
	Name() string
	Register(rg *gin.RouterGroup)
}

// Registry holds the shared middleware chain and the modules mounted under
// it. Nothing is attached to the engine until RegisterAll.
type Registry struct {
	engine  *gin.Engine
	logger  *logrus.Logger
	chain   []gin.HandlerFunc
	modules []Module
}

func NewRegistry(engine *gin.Engine, logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = helpers.NopLogger()
	}
	return &Registry{engine: engine, logger: logger}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) { r.chain = append(r.chain, mw...) }

func (r *Registry) Add(mods ...Module) { r.modules = append(r.modules, mods...) }

// RegisterAll mounts every module and returns the number of routes added.
func (r *Registry) RegisterAll() int {
	root := r.engine.Group("/", r.chain...)
	before := len(r.engine.Routes())
	for _, m := range r.modules {
		n := len(r.engine.Routes())
		m.Register(root)
		r.logger.WithFields(logrus.Fields{
			"module": m.Name(),
			"routes": len(r.engine.Routes()) - n,
		}).Debug("module registered")
	}
	return len(r.engine.Routes()) - before
}
