package handler

import (
	"CloudVault/internal/dto"
	"CloudVault/internal/service"
	"CloudVault/utils"

	"github.com/gin-gonic/gin"
)

// ListTrash 查看回收站列表
func ListTrash(c *gin.Context) {
	items, err := service.ListTrash(c.Request.Context(), currentUser(c))
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, items)
}

// RestoreTrash dismisses the selected records.
func RestoreTrash(c *gin.Context) {
	var req dto.TrashIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	n, err := service.RestoreTrash(c.Request.Context(), currentUser(c), req.IDs)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, dto.CountResult{Count: n})
}

// PurgeTrash 彻底删除
func PurgeTrash(c *gin.Context) {
	var req dto.TrashIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	n, err := service.PurgeTrash(c.Request.Context(), currentUser(c), req.IDs)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, dto.CountResult{Count: n})
}

func EmptyTrash(c *gin.Context) {
	n, err := service.EmptyTrash(c.Request.Context(), currentUser(c))
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, dto.CountResult{Count: n})
}
