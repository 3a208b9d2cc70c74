package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/linemk/ecommerce-api/internal/config"
)

// migrateDSN собирает DSN для мигратора с отдельной таблицей версий схемы
func migrateDSN(dbCfg config.DatabaseConfig, migrationTable, dbPassword string) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable&x-migrations-table=%s",
		dbCfg.User, dbPassword, dbCfg.Host, dbCfg.Port, dbCfg.Name, migrationTable,
	)
}

// queryDSN собирает DSN для обычных SQL-запросов
func queryDSN(dbCfg config.DatabaseConfig, dbPassword string) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		dbCfg.User, dbPassword, dbCfg.Host, dbCfg.Port, dbCfg.Name,
	)
}

func main() {
	var migrationsPathFlag string
	flag.StringVar(&migrationsPathFlag, "migrations-path", "", "path to migration files")
	flag.Parse()

	cfg := config.MustLoad()

	migrationsPath := cfg.Migrations.Path
	if migrationsPathFlag != "" {
		migrationsPath = migrationsPathFlag
	}

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		log.Fatal("DB_PASSWORD environment variable is required")
	}

	m, err := migrate.New(
		"file://"+migrationsPath,
		migrateDSN(cfg.Database, "migrations", dbPassword),
	)
	if err != nil {
		log.Fatalf("failed to create migrate instance: %v", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("No migrations to apply")
		} else {
			log.Fatalf("migration failed: %v", err)
		}
	} else {
		log.Println("Migrations applied successfully")
	}

	db, err := sql.Open("postgres", queryDSN(cfg.Database, dbPassword))
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Контрольная проверка: все таблицы сервиса должны существовать после миграции
	for _, table := range []string{"users", "products", "orders", "order_product"} {
		var exists bool
		err := db.QueryRow(`
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = $1
			)`, table).Scan(&exists)
		if err != nil {
			log.Fatalf("failed to check table %s: %v", table, err)
		}
		if !exists {
			log.Fatalf("table %s is missing after migration", table)
		}
		fmt.Println(" - table ok:", table)
	}
}
