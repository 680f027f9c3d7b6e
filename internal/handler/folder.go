package handler

import (
	"CloudVault/internal/dto"
	"CloudVault/internal/service"
	"CloudVault/utils"
	"log"

	"github.com/gin-gonic/gin"
)

func ListFolders(c *gin.Context) {
	folders, err := service.ListFolders(c.Request.Context(), currentUser(c))
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, folders)
}

// GetFolder returns a folder with its path, children and files.
func GetFolder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := service.GetFolder(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, detail)
}

func CreateFolder(c *gin.Context) {
	var req dto.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	folder, err := service.CreateFolder(c.Request.Context(), currentUser(c), req.Name, req.ParentID)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Created(c, folder)
}

// UpdateFolder renames and/or reparents a folder.
func UpdateFolder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	folder, err := service.UpdateFolder(c.Request.Context(), currentUser(c), id, req)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, folder)
}

func MoveFolder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.MoveFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	folder, err := service.MoveFolder(c.Request.Context(), currentUser(c), id, req.ParentID)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, folder)
}

func DeleteFolder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := service.DeleteFolder(c.Request.Context(), currentUser(c), id); err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, gin.H{"id": id})
}

// DownloadFolderArchive streams a folder subtree as a zip.
func DownloadFolderArchive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	entries, name, err := service.BuildFolderArchive(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respond(c, err)
		return
	}
	c.Header("Content-Disposition", utils.ContentDisposition("attachment", name))
	c.Header("Content-Type", "application/zip")
	if err := service.WriteArchive(c.Request.Context(), c.Writer, entries); err != nil {
		log.Printf("handler: write archive for folder %d failed: %v", id, err)
	}
}
