package migrations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Migration is the persisted record of an applied migration
type Migration struct {
	Version     string    `bson:"version"`
	Description string    `bson:"description"`
	AppliedAt   time.Time `bson:"applied_at"`
}

// MigrationFunc defines a migration function signature
type MigrationFunc func(ctx context.Context, db *mongo.Database) error

// RegisteredMigration holds migration metadata and functions
type RegisteredMigration struct {
	Version     string
	Description string
	Up          MigrationFunc
	Down        MigrationFunc // optional rollback
}

// Runner manages database migrations
type Runner struct {
	db         *mongo.Database
	collection *mongo.Collection
	migrations []RegisteredMigration
}

// NewRunner creates a new migration runner
func NewRunner(db *mongo.Database) *Runner {
	return &Runner{
		db:         db,
		collection: db.Collection("_migrations"),
		migrations: make([]RegisteredMigration, 0),
	}
}

// Register adds a migration to the runner
func (r *Runner) Register(migration RegisteredMigration) {
	r.migrations = append(r.migrations, migration)
}

// Run executes all pending migrations in registration order
func (r *Runner) Run(ctx context.Context) error {
	if err := r.ensureMigrationsIndex(ctx); err != nil {
		return fmt.Errorf("failed to create migrations index: %w", err)
	}

	applied, err := r.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	appliedMap := make(map[string]bool, len(applied))
	for _, m := range applied {
		appliedMap[m.Version] = true
	}

	for _, migration := range r.migrations {
		if appliedMap[migration.Version] {
			continue
		}

		fmt.Printf("Running migration: %s - %s\n", migration.Version, migration.Description)

		if err := migration.Up(ctx, r.db); err != nil {
			return fmt.Errorf("migration %s failed: %w", migration.Version, err)
		}

		record := Migration{
			Version:     migration.Version,
			Description: migration.Description,
			AppliedAt:   time.Now(),
		}
		if _, err := r.collection.InsertOne(ctx, record); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}

		fmt.Printf("Migration %s completed\n", migration.Version)
	}

	return nil
}

// Rollback rolls back the last n applied migrations
func (r *Runner) Rollback(ctx context.Context, steps int) error {
	applied, err := r.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	if steps > len(applied) {
		steps = len(applied)
	}

	migrationMap := make(map[string]RegisteredMigration, len(r.migrations))
	for _, m := range r.migrations {
		migrationMap[m.Version] = m
	}

	for i := len(applied) - 1; i >= len(applied)-steps; i-- {
		version := applied[i].Version
		migration, exists := migrationMap[version]
		if !exists {
			return fmt.Errorf("migration %s not found in registered migrations", version)
		}

		if migration.Down == nil {
			fmt.Printf("Migration %s has no rollback function, skipping\n", version)
			continue
		}

		fmt.Printf("Rolling back migration: %s\n", version)

		if err := migration.Down(ctx, r.db); err != nil {
			return fmt.Errorf("rollback %s failed: %w", version, err)
		}
		if _, err := r.collection.DeleteOne(ctx, bson.M{"version": version}); err != nil {
			return fmt.Errorf("failed to remove migration record %s: %w", version, err)
		}

		fmt.Printf("Rollback %s completed\n", version)
	}

	return nil
}

// Status shows the current migration status
func (r *Runner) Status(ctx context.Context) error {
	applied, err := r.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	appliedMap := make(map[string]Migration, len(applied))
	for _, m := range applied {
		appliedMap[m.Version] = m
	}

	fmt.Println("\nMigration status:")
	fmt.Println(strings.Repeat("=", 72))

	for _, migration := range r.migrations {
		status := "pending"
		appliedAt := ""
		if record, exists := appliedMap[migration.Version]; exists {
			status = "applied"
			appliedAt = fmt.Sprintf(" (at %s)", record.AppliedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("[%s] %s - %s%s\n", status, migration.Version, migration.Description, appliedAt)
	}

	fmt.Printf("\nTotal: %d migrations (%d applied, %d pending)\n",
		len(r.migrations), len(applied), len(r.migrations)-len(applied))

	return nil
}

func (r *Runner) ensureMigrationsIndex(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "version", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err := r.collection.Indexes().CreateOne(ctx, indexModel)
	return err
}

func (r *Runner) getAppliedMigrations(ctx context.Context) ([]Migration, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "version", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var migrations []Migration
	if err := cursor.All(ctx, &migrations); err != nil {
		return nil, err
	}
	return migrations, nil
}
