package handler

import (
	"CloudVault/internal/dto"
	"CloudVault/internal/service"
	"CloudVault/utils"
	"time"

	"github.com/gin-gonic/gin"
)

// Version is reported by the health endpoint; set with -ldflags.
var Version = "dev"

func Health(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":  "ok",
		"time":    time.Now().UTC(),
		"version": Version,
	})
}

// Cleanup runs one admin maintenance pass.
func Cleanup(c *gin.Context) {
	var req dto.CleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := service.Cleanup(c.Request.Context(), req.Type)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, res)
}
