package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/inkpost/inkpost-backend/internal/auth"
	"github.com/inkpost/inkpost-backend/internal/config"
	gdb "github.com/inkpost/inkpost-backend/internal/db"
	"github.com/inkpost/inkpost-backend/internal/db/entities"
	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
	"github.com/inkpost/inkpost-backend/internal/log"
)

// Applies schema migrations and optionally seeds reference data. Intended
// for deploy pipelines; the API server also migrates on startup.
func main() {
	seed := flag.Bool("seed", false, "insert seed data after migrating")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.NewSugar(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	database, err := gdb.NewDatabase(&gdb.Config{
		Type: cfg.Database.Type,
		DSN:  cfg.Database.PostgresDSN,
	})
	if err != nil {
		logger.Fatalw("Failed to create database", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := gdb.ConnectAndMigrate(ctx, database, gdb.AllSchemas()); err != nil {
		logger.Fatalw("Migration failed", "error", err)
	}
	logger.Infow("Migrations applied", "db", cfg.Database.Type)

	if *seed {
		if err := seedAll(ctx, database); err != nil {
			logger.Fatalw("Seeding failed", "error", err)
		}
		logger.Infow("Seed data inserted")
	}

	if err := database.Disconnect(ctx); err != nil {
		logger.Errorw("Disconnect failed", "error", err)
	}
}

// seedAll inserts categories, demo accounts, and sample posts owned by
// those accounts. Reruns are no-ops thanks to the unique constraints.
func seedAll(ctx context.Context, database interfaces.Database) error {
	if err := database.Seed(ctx, entities.CategorySchema, gdb.CategoryFixtures); err != nil {
		return err
	}

	hash, err := auth.HashPassword("inkpost-demo")
	if err != nil {
		return err
	}
	usernames := make([]interface{}, 0, len(gdb.UserFixtures))
	users := make([]map[string]interface{}, 0, len(gdb.UserFixtures))
	for _, fixture := range gdb.UserFixtures {
		record := make(map[string]interface{}, len(fixture)+1)
		for k, v := range fixture {
			record[k] = v
		}
		record["password_hash"] = hash
		users = append(users, record)
		usernames = append(usernames, fixture["username"])
	}
	if err := database.Seed(ctx, entities.UserSchema, users); err != nil {
		return err
	}

	result, err := database.Repository(entities.UserSchema).FindMany(ctx, &interfaces.Query{
		Where: &interfaces.Filters{
			Conditions: []interfaces.Filter{{
				Field:    "username",
				Operator: &interfaces.FilterOperator{In: usernames},
			}},
		},
	})
	if err != nil {
		return err
	}
	ownerIDs := make([]string, 0, len(result.Data))
	for _, record := range result.Data {
		if id, ok := record["id"].(string); ok {
			ownerIDs = append(ownerIDs, id)
		}
	}

	return database.Seed(ctx, entities.PostSchema, gdb.PostFixtures(ownerIDs))
}
