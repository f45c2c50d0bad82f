// Package testing provides test utilities and database setup for the order service
package testing

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/amirphl/cleaning-orders/models"
	_ "github.com/lib/pq" // PostgreSQL driver for database/sql
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDBConfig holds configuration for test database connections
type TestDBConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	SSLMode  string
}

// GetTestDBConfig loads test database configuration from environment variables.
// TEST_DB_DRIVER=postgres runs against a throwaway postgres database, anything
// else uses in-memory sqlite.
func GetTestDBConfig() *TestDBConfig {
	return &TestDBConfig{
		Driver:   getEnv("TEST_DB_DRIVER", "sqlite"),
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnvAsInt("TEST_DB_PORT", 5432),
		User:     getEnv("TEST_DB_USER", "postgres"),
		Password: getEnv("TEST_DB_PASSWORD", "postgres"),
		SSLMode:  getEnv("TEST_DB_SSL_MODE", "disable"),
	}
}

func (c *TestDBConfig) serverDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s sslmode=%s dbname=postgres",
		c.Host, c.Port, c.User, c.Password, c.SSLMode)
}

func (c *TestDBConfig) databaseDSN(name string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, name, c.SSLMode)
}

// TestDB represents a test database instance
type TestDB struct {
	DB     *gorm.DB
	Name   string
	config *TestDBConfig
}

// SetupTestDB creates a fresh database with a unique name and migrates the schema
func SetupTestDB() (*TestDB, error) {
	config := GetTestDBConfig()
	dbName := fmt.Sprintf("orders_test_%d_%d", time.Now().UnixNano(), rand.Intn(10000))

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	var (
		db  *gorm.DB
		err error
	)

	switch config.Driver {
	case "postgres":
		if err = execOnServer(config, fmt.Sprintf("CREATE DATABASE %s", dbName)); err != nil {
			return nil, fmt.Errorf("failed to create test database %s: %w", dbName, err)
		}
		db, err = gorm.Open(postgres.Open(config.databaseDSN(dbName)), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to test database %s: %w", dbName, err)
		}
	default:
		dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName)
		db, err = gorm.Open(sqlite.Open(dsn), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite test database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// a single connection keeps the in-memory database alive and serializes writers
		sqlDB.SetMaxOpenConns(1)
	}

	tdb := &TestDB{DB: db, Name: dbName, config: config}

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		_ = tdb.TeardownTestDB()
		return nil, fmt.Errorf("failed to migrate test database %s: %w", dbName, err)
	}

	return tdb, nil
}

// TeardownTestDB closes connections and drops the database when it lives on a server
func (tdb *TestDB) TeardownTestDB() error {
	if tdb.DB == nil {
		return nil
	}

	if sqlDB, err := tdb.DB.DB(); err == nil {
		sqlDB.Close()
	}

	if tdb.config.Driver != "postgres" {
		return nil
	}

	_ = execOnServer(tdb.config, fmt.Sprintf(
		"SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = '%s' AND pid <> pg_backend_pid()",
		tdb.Name))

	if err := execOnServer(tdb.config, fmt.Sprintf("DROP DATABASE IF EXISTS %s", tdb.Name)); err != nil {
		log.Printf("Warning: failed to drop test database %s: %v", tdb.Name, err)
		return err
	}
	return nil
}

// ClearAllTables removes all data from tables while preserving structure
func (tdb *TestDB) ClearAllTables() error {
	// Order matters due to foreign key constraints
	tables := []string{"order_status_changes", "orders", "admins"}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}

func execOnServer(config *TestDBConfig, stmt string) error {
	db, err := sql.Open("postgres", config.serverDSN())
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = db.ExecContext(ctx, stmt)
	return err
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// TestWithDB sets up a test database, runs the test function, and cleans up
func TestWithDB(testFunc func(*TestDB) error) error {
	testDB, err := SetupTestDB()
	if err != nil {
		return fmt.Errorf("failed to setup test database: %w", err)
	}
	defer func() {
		if cleanupErr := testDB.TeardownTestDB(); cleanupErr != nil {
			log.Printf("Warning: failed to cleanup test database: %v", cleanupErr)
		}
	}()

	return testFunc(testDB)
}

// CreateTestContext creates a context for testing
func CreateTestContext() context.Context {
	return context.Background()
}
