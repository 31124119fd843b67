package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/customer-dedup/internal/application/duplicates"
	"github.com/jhoicas/customer-dedup/internal/infrastructure/postgres"
	"github.com/jhoicas/customer-dedup/internal/interfaces/cli"
	"github.com/jhoicas/customer-dedup/pkg/config"
	"github.com/jhoicas/customer-dedup/pkg/logger"
)

func main() {
	root := cli.NewRootCommand(openSession)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openSession conecta a PostgreSQL con la misma configuración que el servicio HTTP.
func openSession(ctx context.Context) (*cli.Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Env: "development", Level: cfg.App.LogLevel, Out: os.Stderr})

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	uc := duplicates.NewDuplicateUseCase(
		postgres.NewCustomerRepository(pool, cfg.Dedup.CustomersTable),
		log,
		duplicates.Config{
			SearchLimit:     cfg.Dedup.SearchLimit,
			PhoneLimit:      cfg.Dedup.PhoneLimit,
			QueryTimeout:    cfg.Dedup.QueryTimeout,
			StrictFinalPass: cfg.Dedup.StrictFinalPass,
		},
	)
	return &cli.Session{Finder: uc, DefaultThreshold: cfg.Dedup.Threshold, Close: pool.Close}, nil
}
