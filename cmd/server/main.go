package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/staynest/staynest-backend/internal/config"
	"github.com/staynest/staynest-backend/internal/database"
	"github.com/staynest/staynest-backend/internal/handlers"
	"github.com/staynest/staynest-backend/internal/middleware"
	"github.com/staynest/staynest-backend/internal/routes"
	"github.com/staynest/staynest-backend/internal/services"
	"github.com/staynest/staynest-backend/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	log.Printf("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	if err := database.EnsureIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB indexes: %v", err)
	} else {
		log.Println("✅ MongoDB indexes ensured")
	}

	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Media storage. Uploads are skipped, not failed, when no credentials are
	// configured.
	var uploader services.Uploader
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Fatal("Failed to initialize Cloudinary:", err)
		}
		uploader = cld
		log.Println("✅ Cloudinary service initialized")
	} else {
		log.Println("Warning: Cloudinary credentials not found. Media uploads will not be available")
		uploader = services.NopUploader{}
	}

	mailer, err := services.NewSMTPMailer(cfg.SMTP)
	if err != nil {
		log.Fatal("Invalid SMTP configuration:", err)
	}

	users := store.NewUserStore(database.DB)
	homes := store.NewHomeStore(database.DB)

	sessions := services.NewSessionService(database.RedisClient)
	identity := services.NewIdentityService(users)
	otp := services.NewOTPService(users, mailer)
	listings := services.NewListingService(homes, users, uploader)
	favourites := services.NewFavouritesService(users, homes)
	providers := services.NewOAuthProviders(cfg)
	if len(providers) == 0 {
		log.Println("Warning: no OAuth providers configured")
	}

	h := handlers.New(cfg, sessions, identity, otp, listings, favourites, providers)
	auth := middleware.NewSessionAuth(sessions)

	r := chi.NewRouter()

	// Credentials must be allowed so the cross-origin frontend can carry the
	// session cookie.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, per-IP + login rate limiting)")
	} else {
		r.Use(middleware.RedisRateLimit(database.RedisClient))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, h, auth)

	log.Printf("🚀 Staynest backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
