package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"slack-workspace-hub/handlers"
	"slack-workspace-hub/models"
	"slack-workspace-hub/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found")
	}

	secretKey := os.Getenv("SLACK_HUB_SECRET_KEY")
	if secretKey == "" {
		log.Fatal("SLACK_HUB_SECRET_KEY is not set")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "workspace_hub.db"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrate(&models.Workspace{}, &models.PostedMessage{}); err != nil {
		log.Fatal(err)
	}

	workspaces := services.NewWorkspaceService(db, secretKey, services.NewSlackClient)
	mentions := services.NewMentionService(workspaces)
	ledger := services.NewLedgerService(db, workspaces)

	r := gin.Default()

	workspaceHandler := handlers.NewWorkspaceHandler(workspaces)
	messageHandler := handlers.NewMessageHandler(mentions, ledger)

	api := r.Group("/api")
	{
		api.POST("/workspaces", workspaceHandler.Register)
		api.GET("/workspaces", workspaceHandler.List)
		api.GET("/workspaces/:id", workspaceHandler.Get)
		api.DELETE("/workspaces/:id", workspaceHandler.Deactivate)
		api.GET("/workspaces/:id/channels", workspaceHandler.ListChannels)
		api.GET("/workspaces/:id/mentions", messageHandler.FindMentions)
		api.POST("/workspaces/:id/messages", messageHandler.Post)
		api.GET("/messages", messageHandler.ListPosted)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
