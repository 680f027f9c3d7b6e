package handler

import (
	"CloudVault/internal/dto"
	"CloudVault/internal/service"
	"CloudVault/utils"

	"github.com/gin-gonic/gin"
)

// CreateLink creates a private download link for a file.
func CreateLink(c *gin.Context) {
	fileID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	share, err := service.CreateFileShare(c.Request.Context(), currentUser(c), fileID, req)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Created(c, dto.NewLinkView(share))
}

func ListLinks(c *gin.Context) {
	fileID, ok := pathID(c, "id")
	if !ok {
		return
	}
	shares, err := service.ListFileShares(c.Request.Context(), currentUser(c), fileID)
	if err != nil {
		respond(c, err)
		return
	}
	views := make([]dto.LinkView, 0, len(shares))
	for i := range shares {
		views = append(views, dto.NewLinkView(&shares[i]))
	}
	utils.Success(c, views)
}

func DeleteLink(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := service.DeleteFileShare(c.Request.Context(), currentUser(c), id); err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, gin.H{"id": id})
}

// DownloadLink serves a private link. The password may come from the
// header or the password query parameter.
func DownloadLink(c *gin.Context) {
	password := c.GetHeader(SharePasswordHeader)
	if password == "" {
		password = c.Query("password")
	}
	file, rc, info, err := service.DownloadFileShare(c.Request.Context(), c.Param("shareUrl"), password)
	if err != nil {
		respond(c, err)
		return
	}
	sendBlob(c, rc, "attachment", file.Name, file.MimeType, info.Size)
}
