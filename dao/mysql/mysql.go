package mysql

import (
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Init 初始化MySQL连接并建表
func Init(dsn string) (*sqlx.DB, error) {
	// DSN 需要带 parseTime=true，GeneratedAt 才能扫描为 time.Time
	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(32)
	db.SetMaxIdleConns(16)
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func createTables(db *sqlx.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS Users (
			UserID BIGINT PRIMARY KEY AUTO_INCREMENT,
			Username VARCHAR(64) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ImageGenerations (
			ImageID BIGINT PRIMARY KEY AUTO_INCREMENT,
			UserID BIGINT NOT NULL,
			Prompt TEXT NOT NULL,
			NegativePrompt TEXT,
			ImagePath VARCHAR(255) NOT NULL,
			ModelUsed VARCHAR(128) NOT NULL,
			Width INT NOT NULL,
			Height INT NOT NULL,
			Steps INT NOT NULL,
			GeneratedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_user_generated (UserID, GeneratedAt)
		)`,
	}
	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}
