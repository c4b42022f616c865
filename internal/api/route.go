package api

import (
	"Duet/internal/api/middleware"
	"Duet/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", group.UserHandler.Register)
			authGroup.POST("/login", group.UserHandler.Login)

			loggedGroup := authGroup.Group("")
			loggedGroup.Use(middleware.AuthMiddleware())
			{
				loggedGroup.POST("/logout", group.UserHandler.Logout)
				loggedGroup.GET("/me", group.UserHandler.GetUserInfo)
			}
		}

		pairingGroup := apiGroup.Group("/pairing")
		pairingGroup.Use(middleware.AuthMiddleware())
		{
			pairingGroup.POST("/code", group.PairingHandler.GenerateCode)
			pairingGroup.POST("/redeem", group.PairingHandler.RedeemCode)
			pairingGroup.GET("/status", group.PairingHandler.Status)
			pairingGroup.DELETE("", group.PairingHandler.Unpair)
		}

		messageGroup := apiGroup.Group("/messages")
		messageGroup.Use(middleware.AuthMiddleware())
		{
			messageGroup.POST("", group.MessageHandler.Send)
			messageGroup.GET("/:conversation_id", group.MessageHandler.List)
			messageGroup.PUT("/read", group.MessageHandler.MarkAsRead)
			messageGroup.DELETE("/:message_id", group.MessageHandler.Delete)
			messageGroup.GET("/unread/count", group.MessageHandler.UnreadCount)
		}

		mediaGroup := apiGroup.Group("/media")
		mediaGroup.Use(middleware.AuthMiddleware())
		{
			mediaGroup.POST("/upload", group.MediaHandler.Upload)
			mediaGroup.GET("/conversation/:conversation_id", group.MediaHandler.List)
			mediaGroup.GET("/:file_id/download", group.MediaHandler.Download)
			mediaGroup.DELETE("/:file_id", group.MediaHandler.Delete)
		}

		notificationGroup := apiGroup.Group("/notifications")
		notificationGroup.Use(middleware.AuthMiddleware())
		{
			notificationGroup.GET("/unread", group.NotificationHandler.ListUnread)
			notificationGroup.PUT("/read", group.NotificationHandler.MarkRead)
		}

		retentionGroup := apiGroup.Group("/retention")
		retentionGroup.Use(middleware.AuthMiddleware())
		{
			retentionGroup.POST("/run", group.RetentionHandler.RunNow)
		}

		// Websocket 在帧内鉴权，不走 AuthMiddleware
		apiGroup.GET("/im/ws", group.WsHandler.Connect)
	}

	return r
}
