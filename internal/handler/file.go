package handler

import (
	"CloudVault/config"
	"CloudVault/internal/dto"
	"CloudVault/internal/service"
	"CloudVault/utils"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for form fields around the file part.
const multipartOverhead = 1 << 20

// ListFiles lists the files of one folder, or all of the user's files
// when folderId is absent.
func ListFiles(c *gin.Context) {
	var folderID *uint64
	if raw := c.Query("folderId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid folderId")
			return
		}
		folderID = &id
	}
	files, err := service.ListFiles(c.Request.Context(), currentUser(c), folderID)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, dto.NewFileViews(files))
}

func SearchFiles(c *gin.Context) {
	var req dto.SearchFilesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := service.SearchFiles(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, res)
}

func GetFile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	file, err := service.GetFile(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, dto.NewFileView(file))
}

// UploadFile stores one multipart "file" part into folderId.
func UploadFile(c *gin.Context) {
	limit := config.AppConfig.MaxUploadBytes
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	}
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Fail(c, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		utils.Fail(c, http.StatusBadRequest, "no file uploaded")
		return
	}
	if limit > 0 && header.Size > limit {
		utils.Fail(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	folderID, err := strconv.ParseUint(c.PostForm("folderId"), 10, 64)
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid folderId")
		return
	}

	src, err := header.Open()
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "cannot read upload")
		return
	}
	defer src.Close()

	file, err := service.UploadFile(c.Request.Context(), currentUser(c), folderID, header.Filename, header.Size, src)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Created(c, dto.NewFileView(file))
}

func RenameFile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.RenameFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	file, err := service.RenameFile(c.Request.Context(), currentUser(c), id, req.Name)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, dto.NewFileView(file))
}

func MoveFile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.MoveFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	file, err := service.MoveFile(c.Request.Context(), currentUser(c), id, req.FolderID)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, dto.NewFileView(file))
}

func BatchMoveFiles(c *gin.Context) {
	var req dto.BatchMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := service.BatchMoveFiles(c.Request.Context(), currentUser(c), req.FileIDs, req.FolderID); err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, gin.H{"moved": len(req.FileIDs)})
}

func UpdateFileTags(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	file, err := service.UpdateFileTags(c.Request.Context(), currentUser(c), id, req.Tags)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, dto.NewFileView(file))
}

func DeleteFile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := service.DeleteFile(c.Request.Context(), currentUser(c), id); err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, gin.H{"id": id})
}

func BatchDeleteFiles(c *gin.Context) {
	var req dto.BatchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := service.BatchDeleteFiles(c.Request.Context(), currentUser(c), req.FileIDs); err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, gin.H{"deleted": len(req.FileIDs)})
}

func DownloadFile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	file, rc, info, err := service.OpenFile(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respond(c, err)
		return
	}
	sendBlob(c, rc, "attachment", file.Name, file.MimeType, info.Size)
}

// PreviewFile returns decoded text as JSON, other content inline.
func PreviewFile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	preview, err := service.PreviewFile(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respond(c, err)
		return
	}
	writePreview(c, preview)
}

func writePreview(c *gin.Context, p *service.Preview) {
	if p.IsText {
		utils.Success(c, gin.H{
			"type":    "text",
			"name":    p.File.Name,
			"content": p.Text,
		})
		return
	}
	sendBlob(c, p.Reader, "inline", p.File.Name, p.ContentType, p.Size)
}

func GetThumbnail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rc, info, err := service.OpenThumbnail(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respond(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=86400")
	sendBlob(c, rc, "inline", "thumbnail.jpg", "image/jpeg", info.Size)
}
