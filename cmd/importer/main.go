package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/importer"
	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"
	categorysvc "storefront/internal/service/category"
	productsvc "storefront/internal/service/product"
)

func main() {
	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	app := &cli.App{
		Name:  "importer",
		Usage: "import catalog products or categories from a CSV export",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "path to the CSV file",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "parse and validate without writing to the database",
			},
		},
		Action: func(c *cli.Context) error {
			return run(c.Context, logger, c.String("file"), c.Bool("dry-run"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatalf("import failed: %v", err)
	}
}

func run(ctx context.Context, logger *log.Logger, filePath string, dryRun bool) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	var (
		products   importer.ProductWriter
		categories importer.CategoryWriter
	)
	if dryRun {
		products = dryRunProducts{logger: logger}
		categories = dryRunCategories{logger: logger}
	} else {
		cfg, err := config.FromEnv()
		if err != nil {
			return err
		}
		pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
		if err != nil {
			return fmt.Errorf("connect db: %w", err)
		}
		defer pool.Close()
		products = productsvc.New(productrepo.NewPostgres(pool, logger))
		categories = categorysvc.New(categoryrepo.NewPostgres(pool))
	}

	start := time.Now()
	count, err := importer.NewCSVImporter(f, products, categories).Run(ctx)
	if err != nil {
		return err
	}
	logger.Printf("imported %d records from %s in %s (dry_run=%t)", count, filePath, time.Since(start).Truncate(time.Millisecond), dryRun)
	return nil
}

type dryRunProducts struct {
	logger *log.Logger
}

func (w dryRunProducts) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	w.logger.Printf("dry run: product id=%s name=%q price=%.2f", p.ID, p.Name, p.Price)
	return &p, nil
}

type dryRunCategories struct {
	logger *log.Logger
}

func (w dryRunCategories) Upsert(_ context.Context, c domain.Category) (*domain.Category, error) {
	w.logger.Printf("dry run: category key=%s name=%q", c.Key, c.Name)
	return &c, nil
}
