package user

import (
	"strings"

	"freelance-marketplace/internal/global/database"
	"freelance-marketplace/internal/global/jwt"
	"freelance-marketplace/internal/global/response"
	"freelance-marketplace/internal/model"
	"freelance-marketplace/tools"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type RegisterReq struct {
	Email     string     `json:"email" binding:"required,email"`
	Password  string     `json:"password" binding:"required,min=8,max=64"`
	Role      model.Role `json:"role" binding:"required,oneof=freelancer client"` // 管理员不能自行注册
	FirstName string     `json:"first_name" binding:"required,max=50"`
	LastName  string     `json:"last_name" binding:"required,max=50"`
}

type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResp struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register 注册自由职业者或雇主账号
func Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定注册请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	user := model.User{
		Email:     strings.ToLower(req.Email),
		Password:  tools.PasswordEncrypt(req.Password),
		Role:      req.Role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		if database.IsDuplicate(err) {
			log.Warn("邮箱已被注册", "email", user.Email)
			response.Fail(c, response.ErrAlreadyExists.WithTips("邮箱已被注册"))
			return
		}
		log.Error("创建用户失败", "error", err, "email", user.Email)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("用户注册成功", "user_id", user.ID, "role", user.Role)
	response.Success(c, LoginResp{
		Token: jwt.CreateToken(jwt.Payload{UserID: user.ID, Role: user.Role}),
		User:  &user,
	})
}

// Login 邮箱密码登录
func Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定登录请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	var user model.User
	err := database.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		log.Warn("用户不存在", "email", req.Email)
		response.Fail(c, response.ErrNotFound.WithTips("用户不存在"))
		return
	case err != nil:
		log.Error("数据库查询失败", "error", err, "email", req.Email)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	if !tools.PasswordCompare(req.Password, user.Password) {
		log.Warn("密码错误", "user_id", user.ID)
		response.Fail(c, response.ErrInvalidPassword)
		return
	}

	log.Info("用户登录成功", "user_id", user.ID, "role", user.Role)
	response.Success(c, LoginResp{
		Token: jwt.CreateToken(jwt.Payload{UserID: user.ID, Role: user.Role}),
		User:  &user,
	})
}

// Me 当前登录用户
func Me(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	var user model.User
	err := database.DB.First(&user, payload.UserID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.Fail(c, response.ErrNotFound.WithTips("用户不存在"))
		return
	case err != nil:
		log.Error("数据库查询失败", "error", err, "user_id", payload.UserID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, user)
}
