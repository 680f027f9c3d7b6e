package handler

import (
	"CloudVault/internal/dto"
	"CloudVault/internal/service"
	"CloudVault/utils"

	"github.com/gin-gonic/gin"
)

func SendFriendShare(c *gin.Context) {
	var req dto.SendFriendShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	share, err := service.SendFriendShare(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Created(c, dto.NewFriendShareView(share))
}

// ReceivedFriendShares lists incoming transfers; status defaults to
// pending and "all" lists every state.
func ReceivedFriendShares(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	res, err := service.ReceivedFriendShares(c.Request.Context(), currentUser(c), q)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, res)
}

func SentFriendShares(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	res, err := service.SentFriendShares(c.Request.Context(), currentUser(c), q)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, res)
}

func AcceptFriendShare(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	share, err := service.AcceptFriendShare(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, dto.NewFriendShareView(share))
}

func RejectFriendShare(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	share, err := service.RejectFriendShare(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, dto.NewFriendShareView(share))
}

// SaveFriendShare copies an accepted transfer into one of the
// receiver's folders.
func SaveFriendShare(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.SaveToFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	file, err := service.SaveFriendShare(c.Request.Context(), currentUser(c), id, req.FolderID)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Created(c, dto.NewFileView(file))
}

func DownloadFriendShare(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	file, rc, info, err := service.OpenFriendShare(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respond(c, err)
		return
	}
	sendBlob(c, rc, "attachment", file.Name, file.MimeType, info.Size)
}
