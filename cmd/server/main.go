package main

import (
	"context"
	"log"
	"os"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/minired/backend/internal/router"
	"github.com/anonto42/minired/backend/pkg/config"
	"github.com/anonto42/minired/backend/pkg/firebase"
	"github.com/anonto42/minired/backend/pkg/storage"
	"github.com/labstack/echo/v4"
)

func main() {
	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Load configuration
	cfg := config.Load()

	// Initialize Firebase
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	var firebaseAuth *auth.Client
	if firebaseApp != nil {
		firebaseAuth = firebaseApp.AuthClient
	}

	// Initialize Cloudinary blob store
	var blobs storage.BlobStore
	if os.Getenv("CLOUDINARY_URL") != "" {
		blobs, err = storage.NewCloudinaryStore()
		if err != nil {
			log.Fatalf("Failed to initialize Cloudinary: %v", err)
		}
	} else {
		log.Println("CLOUDINARY_URL not set, post image uploads disabled.")
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db, firebaseAuth, blobs, cfg)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
