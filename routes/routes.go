package routes

import (
	"strings"
	"time"

	"trenchi/handlers"
	"trenchi/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "https://trenchi.app"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	api.Use(middleware.RateLimit())

	// Public: profile lookup doubles as the login existence check, and
	// profile submission happens before a session exists.
	api.GET("/profile/:walletAddress", handlers.GetProfile)
	api.POST("/profile/:walletAddress", handlers.SaveProfile)
	api.POST("/login", handlers.Login)
	api.GET("/leaderboard", handlers.GetLeaderboard)

	protected := api.Group("")
	protected.Use(middleware.WalletAuth())

	protected.POST("/like/:walletAddress", handlers.LikeUser)
	protected.POST("/dislike/:walletAddress", handlers.DislikeUser)
	protected.POST("/unmatch/:walletAddress", handlers.UnmatchUser)
	protected.GET("/potential-matches", handlers.GetPotentialMatches)
	protected.GET("/matches", handlers.GetMatches)

	protected.DELETE("/profile/:walletAddress", handlers.DeleteProfile)
	protected.POST("/profile/:walletAddress/photo", handlers.UploadPhoto)

	protected.POST("/messages/send", handlers.SendMessage)
	protected.GET("/messages/history/:walletAddress", handlers.GetChatHistory)
	protected.GET("/messages/conversations", handlers.GetConversations)

	protected.POST("/subscription", handlers.SaveSubscription)
	api.GET("/subscription/:walletAddress", handlers.GetSubscription)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(404, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
