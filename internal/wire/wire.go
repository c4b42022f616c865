package wire

import (
	"Duet/internal/api"
	"Duet/internal/api/config"
	"Duet/internal/api/handler"
	"Duet/internal/im"
	"Duet/internal/job"
	"Duet/internal/pkg/cron"
	"Duet/internal/pkg/security"
	"Duet/internal/registry"
	"Duet/internal/repository"
	"Duet/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router  *gin.Engine
	DB      *gorm.DB
	Hub     *im.Hub
	CronMgr *cron.Manager
}

func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	userRepo := repository.NewUserRepo(db)
	convRepo := repository.NewConversationRepo(db)
	pairingRepo := repository.NewPairingRepo(db)
	messageRepo := repository.NewMessageRepo(db)
	mediaRepo := repository.NewMediaRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)

	reg := registry.NewConversationRegistry(convRepo)

	cipher, err := security.NewAESGCMCipher(cfg.Crypto.MasterKey)
	if err != nil {
		return nil, err
	}
	blobs := service.NewMinioBlobStore()

	messageTTL := time.Duration(cfg.Retention.MessageTTLDays) * 24 * time.Hour
	fileTTL := time.Duration(cfg.Retention.FileTTLDays) * 24 * time.Hour
	codeTTL := time.Duration(cfg.Retention.CodeTTLHours) * time.Hour
	notificationTTL := time.Duration(cfg.Retention.NotificationTTLDays) * 24 * time.Hour

	userService := service.NewUserService(userRepo)
	notificationService := service.NewNotificationService(notificationRepo)
	pairingService := service.NewPairingService(pairingRepo, convRepo, userRepo, reg, notificationService, codeTTL)
	messageService := service.NewMessageService(messageRepo, userRepo, reg, cipher, messageTTL)
	mediaService := service.NewMediaService(mediaRepo, userRepo, reg, blobs, fileTTL, cfg.Storage.MaxUploadBytes)

	hub := im.NewHub(userRepo, reg, messageService, mediaService, notificationService, im.NewRedisPresenceStore())

	retentionJob := job.NewRetentionJob(messageRepo, mediaRepo, pairingRepo, notificationRepo, blobs, notificationTTL)

	handlers := &api.HandlersGroup{
		UserHandler:         handler.NewUserHandler(userService),
		PairingHandler:      handler.NewPairingHandler(pairingService),
		MessageHandler:      handler.NewMessageHandler(messageService),
		MediaHandler:        handler.NewMediaHandler(mediaService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		RetentionHandler:    handler.NewRetentionHandler(retentionJob),
		WsHandler:           handler.NewWsHandler(hub),
	}

	router := api.SetupRouter(handlers)
	cronMgr := cron.NewCronManager(retentionJob, cfg.Retention.CronSpec)

	return &ApplicationContainer{
		Router:  router,
		DB:      db,
		Hub:     hub,
		CronMgr: cronMgr,
	}, nil
}
