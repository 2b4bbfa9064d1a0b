package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/velamoda/backoffice/app/catalog"
	"github.com/velamoda/backoffice/app/categories"
	"github.com/velamoda/backoffice/app/matrix"
	"github.com/velamoda/backoffice/app/orders"
	"github.com/velamoda/backoffice/middleware"
	"github.com/velamoda/backoffice/models"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, using process environment")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("open database failed")
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatal().Err(err).Msg("database unreachable")
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("init gorm failed")
	}

	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Attribute{},
		&models.AttributeValue{},
		&models.Variant{},
		&models.VariantAttributeAssignment{},
		&models.Order{},
		&models.OrderLine{},
	); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	productsRepo := models.NewProductsRepository(db)
	categoriesRepo := models.NewCategoriesRepository(db)
	attributesRepo := models.NewAttributesRepository(db)
	variantsRepo := models.NewVariantsRepository(db)
	ordersRepo := models.NewOrdersRepository(db)

	catalogHandler := catalog.NewCatalogHandler(productsRepo)
	categoryHandler := categories.NewCategoryHandler(categoriesRepo)
	matrixHandler := matrix.NewMatrixHandler(productsRepo, variantsRepo, attributesRepo)
	ordersHandler := orders.NewOrdersHandler(ordersRepo, productsRepo, variantsRepo, attributesRepo)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/catalog", catalogHandler.HandleGet)
	r.Get("/catalog/{code}", catalogHandler.HandleGetProduct)

	r.Get("/categories", categoryHandler.HandleGetAll)
	r.Post("/categories", categoryHandler.HandleCreate)

	r.Route("/products/{code}/variants", func(r chi.Router) {
		r.Post("/matrix", matrixHandler.HandleGenerate)
		r.Post("/", matrixHandler.HandleCommit)
		r.Get("/options", matrixHandler.HandleOptions)
		r.Get("/resolve", matrixHandler.HandleResolve)
		r.Get("/locks", matrixHandler.HandleLocks)
		r.Get("/audit", matrixHandler.HandleAudit)
	})

	r.Post("/orders", ordersHandler.HandleCreate)
	r.Get("/orders/{number}", ordersHandler.HandleGet)
	r.Post("/orders/{number}/lines", ordersHandler.HandleAddLine)

	server := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
