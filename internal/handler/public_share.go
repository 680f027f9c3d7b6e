package handler

import (
	"CloudVault/config"
	"CloudVault/internal/dto"
	"CloudVault/internal/service"
	"CloudVault/model"
	"CloudVault/utils"

	"github.com/gin-gonic/gin"
)

func publicShareView(s *model.PublicShare) dto.PublicShareView {
	return dto.NewPublicShareView(s, config.AppConfig.FrontendURL, service.Now())
}

func CreatePublicShare(c *gin.Context) {
	var req dto.CreatePublicShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	share, err := service.CreatePublicShare(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Created(c, publicShareView(share))
}

func ListPublicShares(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	res, err := service.ListPublicShares(c.Request.Context(), currentUser(c), q)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, res)
}

func ListPublicSharesForFile(c *gin.Context) {
	fileID, ok := pathID(c, "fileId")
	if !ok {
		return
	}
	shares, err := service.ListPublicSharesForFile(c.Request.Context(), currentUser(c), fileID)
	if err != nil {
		respond(c, err)
		return
	}
	views := make([]dto.PublicShareView, 0, len(shares))
	for i := range shares {
		views = append(views, publicShareView(&shares[i]))
	}
	utils.Success(c, views)
}

func UpdatePublicShare(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePublicShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	share, err := service.UpdatePublicShare(c.Request.Context(), currentUser(c), id, req)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, publicShareView(share))
}

func DeletePublicShare(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := service.DeletePublicShare(c.Request.Context(), currentUser(c), id); err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, gin.H{"id": id})
}

// GetSharedFile shows what a token points at to an anonymous visitor.
func GetSharedFile(c *gin.Context) {
	info, err := service.GetPublicShare(c.Request.Context(), c.Param("token"), c.GetHeader(SharePasswordHeader))
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, info)
}

func DownloadSharedFile(c *gin.Context) {
	file, rc, info, err := service.DownloadPublicShare(c.Request.Context(), c.Param("token"), c.GetHeader(SharePasswordHeader))
	if err != nil {
		respond(c, err)
		return
	}
	sendBlob(c, rc, "attachment", file.Name, file.MimeType, info.Size)
}

func PreviewSharedFile(c *gin.Context) {
	preview, err := service.PreviewPublicShare(c.Request.Context(), c.Param("token"), c.GetHeader(SharePasswordHeader))
	if err != nil {
		respond(c, err)
		return
	}
	writePreview(c, preview)
}

// SaveSharedFile copies a publicly shared file into the caller's folder.
func SaveSharedFile(c *gin.Context) {
	var req dto.SaveToFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	file, err := service.SavePublicShare(c.Request.Context(), currentUser(c), c.Param("token"), c.GetHeader(SharePasswordHeader), req.FolderID)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Created(c, dto.NewFileView(file))
}
