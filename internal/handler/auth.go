package handler

import (
	"CloudVault/internal/dto"
	"CloudVault/internal/service"
	"CloudVault/utils"

	"github.com/gin-gonic/gin"
)

// Register creates an account and signs it in.
func Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := service.Register(c.Request.Context(), req)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Created(c, resp)
}

// Login authenticates a user and returns a token.
func Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := service.Login(c.Request.Context(), req)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, resp)
}

// Me returns the signed in user.
func Me(c *gin.Context) {
	user, err := service.GetUser(c.Request.Context(), currentUser(c))
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, dto.NewUserView(user))
}
