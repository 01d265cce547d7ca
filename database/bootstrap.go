// database/bootstrap.go
package database

import (
	"log"
	"time"

	sqlite "github.com/glebarez/sqlite" // CGO-free driver
	"gorm.io/gorm"

	"nolabor/entities"
	"nolabor/pkg/modelcfg"
)

// OpenSQLite opens the database, bounds the pool, migrates the schema,
// and seeds the model_configs sites. The pool stays small on purpose:
// long LLM waits never hold a connection, DB writes bracket the call.
func OpenSQLite(path, defaultModel string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		log.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := db.AutoMigrate(
		&entities.User{},
		&entities.Submission{},
		&entities.Analysis{},
		&entities.ModelConfig{},
	); err != nil {
		log.Fatalf("automigrate: %v", err)
	}

	if err := modelcfg.Seed(db, defaultModel); err != nil {
		log.Fatalf("seed model configs: %v", err)
	}

	return db
}
