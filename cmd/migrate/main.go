// Command migrate applies the bot's database schema. Safe to run
// repeatedly; every statement is idempotent.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/fqrmix/what-is-the-price-now/internal/config"
	pg "github.com/fqrmix/what-is-the-price-now/internal/infra/db/postgres"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          BIGINT PRIMARY KEY,
		name        TEXT NOT NULL,
		tariff      TEXT NOT NULL DEFAULT 'standard',
		notify_time TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id                UUID PRIMARY KEY,
		user_id           BIGINT NOT NULL REFERENCES users (id),
		article_name      TEXT NOT NULL,
		article_price     NUMERIC(12, 2) NOT NULL,
		article_shop      TEXT NOT NULL,
		article_url       TEXT NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL,
		next_execution_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_user ON subscriptions (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_next ON subscriptions (next_execution_at)`,
	`CREATE TABLE IF NOT EXISTS feedback_messages (
		id         UUID PRIMARY KEY,
		user_id    BIGINT NOT NULL,
		message    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 2)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatalf("apply schema: %v", err)
		}
	}
	log.Println("schema is up to date")
}
