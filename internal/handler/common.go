package handler

import (
	"CloudVault/internal/errs"
	"CloudVault/utils"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// SharePasswordHeader carries the password of protected share links.
const SharePasswordHeader = "X-Share-Password"

// respond writes err using its kind to pick the status.
func respond(c *gin.Context, err error) {
	kind := errs.KindOf(err)
	status := errs.HTTPStatus(kind)
	if status >= http.StatusInternalServerError {
		log.Printf("handler: %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	utils.Fail(c, status, errs.Message(err))
}

func badRequest(c *gin.Context, err error) {
	utils.Fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
}

func currentUser(c *gin.Context) uint64 {
	return c.MustGet("user_id").(uint64)
}

// pathID parses a positive numeric path parameter and writes 400 when it
// is not one.
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.Fail(c, http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return id, true
}

// sendBlob streams rc to the client and closes it.
func sendBlob(c *gin.Context, rc io.ReadCloser, disposition, name, contentType string, size int64) {
	defer rc.Close()
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", utils.ContentDisposition(disposition, name))
	c.Header("Content-Type", contentType)
	c.Header("X-Content-Type-Options", "nosniff")
	if size > 0 {
		c.Header("Content-Length", strconv.FormatInt(size, 10))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		log.Printf("handler: stream %s failed: %v", name, err)
	}
}
