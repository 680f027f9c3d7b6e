package router

import (
	"CloudVault/config"
	"CloudVault/internal/handler"
	"CloudVault/utils"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// InitRouter builds API routes.
func InitRouter() *gin.Engine {
	if err := registerValidators(); err != nil {
		log.Fatalln("register validators failed:", err)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.AppConfig.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", handler.SharePasswordHeader},
		ExposeHeaders:    []string{"Content-Disposition", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	shareLimiter := utils.NewIPRateLimiter(config.AppConfig.ShareRate, config.AppConfig.ShareBurst)
	limited := utils.RateLimitMiddleware(shareLimiter)
	auth := utils.AuthMiddleware()

	api := r.Group("/api")
	{
		api.GET("/health", handler.Health)

		account := api.Group("/auth")
		{
			account.POST("/register", limited, handler.Register)
			account.POST("/login", limited, handler.Login)
			account.GET("/me", auth, handler.Me)
		}

		friends := api.Group("/friends", auth)
		{
			friends.GET("", handler.ListFriends)
			friends.POST("/search", handler.SearchFriend)
			friends.POST("/request", handler.SendFriendRequest)
			friends.GET("/requests", handler.ListFriendRequests)
			friends.POST("/request/:id/accept", handler.AcceptFriendRequest)
			friends.POST("/request/:id/reject", handler.RejectFriendRequest)
			friends.DELETE("/:friendId", handler.RemoveFriend)
		}

		folders := api.Group("/folders", auth)
		{
			folders.GET("", handler.ListFolders)
			folders.POST("", handler.CreateFolder)
			folders.GET("/:id", handler.GetFolder)
			folders.PUT("/:id", handler.UpdateFolder)
			folders.PUT("/:id/move", handler.MoveFolder)
			folders.DELETE("/:id", handler.DeleteFolder)
			folders.GET("/:id/archive", handler.DownloadFolderArchive)
		}

		files := api.Group("/files", auth)
		{
			files.GET("", handler.ListFiles)
			files.GET("/search", handler.SearchFiles)
			files.POST("/upload", handler.UploadFile)
			files.PUT("/batch/move", handler.BatchMoveFiles)
			files.DELETE("/batch", handler.BatchDeleteFiles)
			files.GET("/:id", handler.GetFile)
			files.PUT("/:id/rename", handler.RenameFile)
			files.PUT("/:id/move", handler.MoveFile)
			files.PUT("/:id/tags", handler.UpdateFileTags)
			files.DELETE("/:id", handler.DeleteFile)
			files.GET("/:id/download", handler.DownloadFile)
			files.GET("/:id/preview", handler.PreviewFile)
			files.GET("/:id/thumbnail", handler.GetThumbnail)
			files.POST("/:id/links", handler.CreateLink)
			files.GET("/:id/links", handler.ListLinks)
		}

		api.GET("/links/:shareUrl/download", limited, handler.DownloadLink)
		api.DELETE("/links/:id", auth, handler.DeleteLink)

		trash := api.Group("/trash", auth)
		{
			trash.GET("", handler.ListTrash)
			trash.POST("/restore", handler.RestoreTrash)
			trash.DELETE("/delete", handler.PurgeTrash)
			trash.DELETE("/empty", handler.EmptyTrash)
		}

		friendShares := api.Group("/friend-shares", auth)
		{
			friendShares.POST("/send", handler.SendFriendShare)
			friendShares.GET("/received", handler.ReceivedFriendShares)
			friendShares.GET("/sent", handler.SentFriendShares)
			friendShares.POST("/:id/accept", handler.AcceptFriendShare)
			friendShares.POST("/:id/reject", handler.RejectFriendShare)
			friendShares.POST("/:id/save", handler.SaveFriendShare)
			friendShares.GET("/:id/download", handler.DownloadFriendShare)
		}

		shares := api.Group("/shares")
		{
			shares.POST("", auth, handler.CreatePublicShare)
			shares.GET("", auth, handler.ListPublicShares)
			shares.GET("/file/:fileId", auth, handler.ListPublicSharesForFile)
			shares.PUT("/:id", auth, handler.UpdatePublicShare)
			shares.DELETE("/:id", auth, handler.DeletePublicShare)

			token := shares.Group("/token/:token", limited)
			{
				token.GET("", handler.GetSharedFile)
				token.GET("/download", handler.DownloadSharedFile)
				token.GET("/preview", handler.PreviewSharedFile)
				token.POST("/save", auth, handler.SaveSharedFile)
			}
		}

		system := api.Group("/system", auth, utils.AdminOnly())
		{
			system.POST("/cleanup", handler.Cleanup)
		}
	}
	return r
}
