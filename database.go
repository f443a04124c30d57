package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/emb-protocol/issuance/pkg/log"
)

// In order to connect to Postgresql you need to fill out all the fields.
//
// To connect to sqlite, you just need to specify "sqlite" driver.
// EMB_DATABASE_NAME is the file; leave it empty for an in-memory database.
type DatabaseConfig struct {
	Name     string `env:"EMB_DATABASE_NAME" env-default:"emb.db"`
	Schema   string `env:"EMB_DATABASE_SCHEMA" env-default:""`
	Driver   string `env:"EMB_DATABASE_DRIVER" env-default:"sqlite"`
	Username string `env:"EMB_DATABASE_USERNAME" env-default:"postgres"`
	Password string `env:"EMB_DATABASE_PASSWORD" env-default:""`
	Host     string `env:"EMB_DATABASE_HOST" env-default:"localhost"`
	Port     string `env:"EMB_DATABASE_PORT" env-default:"5432"`
}

// InMemory reports whether the configuration points at a throwaway sqlite database.
func (c DatabaseConfig) InMemory() bool {
	return (c.Driver == "" || c.Driver == "sqlite") && (c.Name == "" || c.Name == ":memory:")
}

// ParseConnectionString parses a PostgreSQL URI or a sqlite "file:" DSN.
func ParseConnectionString(connStr string) (DatabaseConfig, error) {
	if strings.HasPrefix(connStr, "file:") {
		parts := strings.SplitN(connStr[5:], "?", 2)
		return DatabaseConfig{
			Name:   parts[0],
			Driver: "sqlite",
		}, nil
	}

	parsedURL, err := url.Parse(connStr)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid connection string: %w", err)
	}

	if parsedURL.Scheme != "postgres" && parsedURL.Scheme != "postgresql" {
		return DatabaseConfig{}, fmt.Errorf("unsupported scheme: %s", parsedURL.Scheme)
	}

	username := ""
	password := ""
	if user := parsedURL.User; user != nil {
		username = user.Username()
		password, _ = user.Password()
	}

	port := parsedURL.Port()
	if port == "" {
		port = "5432"
	} else if _, err := strconv.Atoi(port); err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid port: %s", port)
	}

	return DatabaseConfig{
		Name:     strings.TrimPrefix(parsedURL.Path, "/"),
		Schema:   parsedURL.Query().Get("search_path"),
		Driver:   "postgres",
		Username: username,
		Password: password,
		Host:     parsedURL.Hostname(),
		Port:     port,
	}, nil
}

func ConnectToDB(cnf DatabaseConfig, logger log.Logger) (*gorm.DB, error) {
	logger = logger.WithName("database")
	switch cnf.Driver {
	case "postgres":
		return connectToPostgresql(cnf, logger)
	case "sqlite", "":
		return connectToSqlite(cnf, logger)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cnf.Driver)
	}
}

func connectToPostgresql(cnf DatabaseConfig, logger log.Logger) (*gorm.DB, error) {
	logger.Debug("connecting to Postgresql", "host", cnf.Host, "database", cnf.Name)
	if err := ensurePostgresqlSchema(cnf, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure Postgresql schema: %w", err)
	}

	if err := migratePostgres(cnf, logger); err != nil {
		return nil, fmt.Errorf("failed to apply Postgresql migrations: %w", err)
	}

	namingStrategy := schema.NamingStrategy{}
	if cnf.Schema != "" {
		namingStrategy.TablePrefix = cnf.Schema + "."
	}

	return gorm.Open(postgres.Open(postgresqlDSN(cnf)), &gorm.Config{NamingStrategy: namingStrategy})
}

func connectToSqlite(cnf DatabaseConfig, logger log.Logger) (*gorm.DB, error) {
	var dsn string
	if cnf.Name != "" {
		logger.Debug("connecting to sqlite", "file", cnf.Name)
		dsn = fmt.Sprintf("file:%s?cache=shared", cnf.Name)
	} else {
		logger.Debug("connecting to in-memory sqlite")
		dsn = "file::memory:?cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := migrateSqlite(db); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
	}
	return db, nil
}

func postgresqlDSN(cnf DatabaseConfig) string {
	dsn := fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		cnf.Username, cnf.Password, cnf.Host, cnf.Port, cnf.Name,
	)
	if cnf.Schema != "" {
		dsn = fmt.Sprintf("%s search_path=%s", dsn, cnf.Schema)
	}
	return dsn
}

func ensurePostgresqlSchema(cnf DatabaseConfig, logger log.Logger) error {
	if cnf.Schema == "" {
		return nil
	}

	dbConf := cnf
	dbConf.Schema = ""
	db, err := sqlx.Connect("postgres", postgresqlDSN(dbConf))
	if err != nil {
		return err
	}
	defer db.Close()

	var exists bool
	if err := db.Get(&exists, "SELECT EXISTS(SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)", cnf.Schema); err != nil {
		return fmt.Errorf("error while checking schema existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + pq.QuoteIdentifier(cnf.Schema)); err != nil {
		return fmt.Errorf("error while creating schema: %w", err)
	}

	logger.Info("schema created", "schema", cnf.Schema)
	return nil
}

func migratePostgres(cnf DatabaseConfig, logger log.Logger) error {
	db, err := goose.OpenDBWithDriver("postgres", postgresqlDSN(cnf))
	if err != nil {
		return err
	}
	defer db.Close()

	if cnf.Schema != "" {
		if _, err := db.Exec("SET search_path TO " + pq.QuoteIdentifier(cnf.Schema)); err != nil {
			return fmt.Errorf("failed to set search path: %w", err)
		}
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.Up(db, "config/migrations/postgres"); err != nil {
		return err
	}

	logger.Debug("applied migrations")
	return nil
}

func migrateSqlite(db *gorm.DB) error {
	return db.AutoMigrate(&TokenState{}, &Entry{}, &Issuance{}, &ConsumedAuthorization{})
}
