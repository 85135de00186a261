// Package validate 注册 gin 绑定使用的自定义校验规则
package validate

import (
	"sync"

	"freelance-marketplace/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var once sync.Once

// Init 注册 project_status、proposal_status，可重复调用
func Init() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		Register(v)
	})
}

func Register(v *validator.Validate) {
	_ = v.RegisterValidation("project_status", func(fl validator.FieldLevel) bool {
		return model.ProjectStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("proposal_status", func(fl validator.FieldLevel) bool {
		return model.ProposalStatus(fl.Field().String()).Valid()
	})
}
