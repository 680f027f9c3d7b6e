package handler

import (
	"CloudVault/internal/dto"
	"CloudVault/internal/service"
	"CloudVault/utils"

	"github.com/gin-gonic/gin"
)

// SearchFriend looks a user up by their share code.
func SearchFriend(c *gin.Context) {
	var req dto.FriendSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := service.SearchByCode(c.Request.Context(), currentUser(c), req.UserCode)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, res)
}

func SendFriendRequest(c *gin.Context) {
	var req dto.FriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	friendship, err := service.SendFriendRequest(c.Request.Context(), currentUser(c), req.FriendID)
	if err != nil {
		respond(c, err)
		return
	}
	utils.Created(c, friendship)
}

func ListFriendRequests(c *gin.Context) {
	res, err := service.ListFriendRequests(c.Request.Context(), currentUser(c))
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, res)
}

func AcceptFriendRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := service.AcceptFriendRequest(c.Request.Context(), currentUser(c), id); err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, gin.H{"id": id})
}

func RejectFriendRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := service.RejectFriendRequest(c.Request.Context(), currentUser(c), id); err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, gin.H{"id": id})
}

func ListFriends(c *gin.Context) {
	friends, err := service.ListFriends(c.Request.Context(), currentUser(c))
	if err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, friends)
}

// RemoveFriend ends an accepted friendship with the given user.
func RemoveFriend(c *gin.Context) {
	friendID, ok := pathID(c, "friendId")
	if !ok {
		return
	}
	if err := service.RemoveFriend(c.Request.Context(), currentUser(c), friendID); err != nil {
		respond(c, err)
		return
	}
	utils.Success(c, gin.H{"friendId": friendID})
}
