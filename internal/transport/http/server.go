package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "nlustudio/internal/app"
	"nlustudio/internal/bootstrap"
	"nlustudio/internal/cache"
	"nlustudio/internal/platform/rabbitmq"
	"nlustudio/internal/repository"
	"nlustudio/internal/transport/http/handler"
	"nlustudio/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	sessionRepo := repository.NewSessionRepository(app.MySQL)
	workspaceRepo := repository.NewWorkspaceRepository(app.MySQL)
	datasetRepo := repository.NewDatasetRepository(app.MySQL)
	mlModelRepo := repository.NewMLModelRepository(app.MySQL)
	nluModelRepo := repository.NewNLUModelRepository(app.MySQL)
	annotationRepo := repository.NewAnnotationRepository(app.MySQL)
	chatRepo := repository.NewChatRepository(app.MySQL)
	historyRepo := repository.NewTrainingHistoryRepository(app.MySQL)

	validator := appsvc.NewOwnershipValidator(
		workspaceRepo,
		datasetRepo,
		mlModelRepo,
		nluModelRepo,
		annotationRepo,
		chatRepo,
	)

	sessionTTL := time.Duration(app.Config.Auth.SessionTTLHours) * time.Hour
	historyCache := cache.NewChatHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	epochPublisher := rabbitmq.NewEpochPublisher(app.MQConn, app.Config.RabbitMQ.EpochPersistQueue)

	authService := appsvc.NewAuthService(userRepo, sessionRepo, sessionTTL)
	workspaceService := appsvc.NewWorkspaceService(workspaceRepo)
	datasetService := appsvc.NewDatasetService(datasetRepo, validator, app.Config.Storage.UploadDir)
	mlModelService := appsvc.NewMLModelService(mlModelRepo, datasetRepo, validator, app.Backend, epochPublisher)
	nluModelService := appsvc.NewNLUModelService(nluModelRepo, validator, app.Backend)
	annotationService := appsvc.NewAnnotationService(annotationRepo, validator)
	chatService := appsvc.NewChatService(chatRepo, nluModelRepo, validator, historyCache)
	historyService := appsvc.NewTrainingHistoryService(historyRepo, validator)

	authHandler := handler.NewAuthHandler(authService, sessionTTL)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService)
	datasetHandler := handler.NewDatasetHandler(datasetService)
	mlModelHandler := handler.NewMLModelHandler(mlModelService)
	nluModelHandler := handler.NewNLUModelHandler(nluModelService, annotationService)
	annotationHandler := handler.NewAnnotationHandler(annotationService)
	chatHandler := handler.NewChatHandler(chatService)
	historyHandler := handler.NewTrainingHistoryHandler(historyService)

	authRequired := middleware.SessionAuth(authService)

	v1 := router.Group("/api/v1")
	v1.GET("/backend-status", healthHandler.BackendStatus)

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authRequired, authHandler.Logout)
	authGroup.GET("/me", authRequired, authHandler.Me)

	workspaces := v1.Group("/workspaces", authRequired)
	workspaces.GET("", workspaceHandler.List)
	workspaces.POST("", workspaceHandler.Create)
	workspaces.GET("/:id", workspaceHandler.Get)
	workspaces.PUT("/:id", workspaceHandler.Update)
	workspaces.DELETE("/:id", workspaceHandler.Delete)

	datasets := v1.Group("/datasets", authRequired)
	datasets.GET("", datasetHandler.List)
	datasets.POST("", datasetHandler.Create)
	datasets.POST("/upload", datasetHandler.Upload)
	datasets.GET("/:id", datasetHandler.Get)
	datasets.DELETE("/:id", datasetHandler.Delete)

	mlModels := v1.Group("/ml-models", authRequired)
	mlModels.GET("", mlModelHandler.List)
	mlModels.POST("", mlModelHandler.Create)
	mlModels.POST("/train", mlModelHandler.Train)
	mlModels.POST("/predict", mlModelHandler.Predict)
	mlModels.GET("/:id", mlModelHandler.Get)
	mlModels.PUT("/:id", mlModelHandler.Update)
	mlModels.DELETE("/:id", mlModelHandler.Delete)
	mlModels.PUT("/:id/select", mlModelHandler.Select)
	mlModels.GET("/:id/download", mlModelHandler.Download)

	nluModels := v1.Group("/nlu-models", authRequired)
	nluModels.GET("", nluModelHandler.List)
	nluModels.POST("", nluModelHandler.Create)
	nluModels.GET("/:id", nluModelHandler.Get)
	nluModels.PUT("/:id", nluModelHandler.Update)
	nluModels.DELETE("/:id", nluModelHandler.Delete)
	nluModels.GET("/:id/annotations", nluModelHandler.ListAnnotations)

	v1.POST("/nlu/predict", authRequired, nluModelHandler.Predict)

	annotations := v1.Group("/annotations", authRequired)
	annotations.GET("", annotationHandler.List)
	annotations.POST("", annotationHandler.Create)
	annotations.PUT("/:id", annotationHandler.Update)
	annotations.DELETE("/:id", annotationHandler.Delete)

	chat := v1.Group("/chat", authRequired)
	chat.GET("/sessions", chatHandler.ListSessions)
	chat.POST("/sessions", chatHandler.CreateSession)
	chat.GET("/sessions/:id", chatHandler.GetSession)
	chat.PUT("/sessions/:id/end", chatHandler.EndSession)
	chat.GET("/sessions/:id/messages", chatHandler.ListMessages)
	chat.POST("/sessions/:id/messages", chatHandler.CreateMessage)

	v1.GET("/training-history", authRequired, historyHandler.List)

	return router
}
