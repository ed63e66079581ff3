package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketsync_v1_202608/internal/service"
)

// AuthController 登录控制器
type AuthController struct {
	authSvc *service.AuthService
}

// NewAuthController 创建登录控制器
func NewAuthController(authSvc *service.AuthService) *AuthController {
	return &AuthController{authSvc: authSvc}
}

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login 口令登录换取访问令牌
// POST /api/auth/login
func (c *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	token, err := c.authSvc.Login(req.Password)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "口令错误"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"token": token},
	})
}
