// Command ledger-check recomputes every item's quantity from its transactions
// and reports items whose stored quantity has drifted. It exits with status 2
// when drift is found.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go-inventory-po/internal/model"
	"go-inventory-po/internal/repository"
	"go-inventory-po/internal/service"
	"go-inventory-po/pkg/config"
	"go-inventory-po/pkg/database"
	"go-inventory-po/pkg/logger"

	"github.com/google/uuid"
)

func main() {
	itemFlag := flag.String("item", "", "check a single item id")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		ServiceName: "ledger-check",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})
	ctx := context.Background()

	// 2. Setup Database
	db, err := database.Connect(cfg.DB, log.Zerolog())
	if err != nil {
		log.Error(ctx, "database connection failed", err)
		os.Exit(1)
	}

	itemRepo := repository.NewItemRepo(db)
	inventory := service.NewInventoryService(
		db,
		itemRepo,
		repository.NewTransactionRepo(db),
		repository.NewCategoryRepo(db),
		repository.NewPurchaseOrderRepo(db),
		log,
		nil,
	)

	// 3. Collect items
	var items []model.InventoryItem
	if *itemFlag != "" {
		id, err := uuid.Parse(*itemFlag)
		if err != nil {
			log.Error(ctx, "invalid item id", err)
			os.Exit(1)
		}
		item, err := inventory.GetItem(ctx, id)
		if err != nil {
			log.Error(ctx, "item lookup failed", err)
			os.Exit(1)
		}
		items = append(items, *item)
	} else if items, err = itemRepo.FindAll(ctx); err != nil {
		log.Error(ctx, "failed to list items", err)
		os.Exit(1)
	}

	// 4. Verify
	drifted := 0
	for _, item := range items {
		check, err := inventory.VerifyLedger(ctx, item.ID)
		if err != nil {
			log.Error(ctx, "ledger check failed", err)
			os.Exit(1)
		}
		if !check.Consistent {
			drifted++
			fmt.Printf("DRIFT %s %s stored=%d ledger=%d (in=%d out=%d)\n",
				item.Code, item.Name, check.CurrentQuantity, check.LedgerQuantity, check.LedgerInbound, check.LedgerOutbound)
		}
	}

	log.InfoFields(ctx, "ledger check finished", map[string]any{"items": len(items), "drifted": drifted})
	if drifted > 0 {
		os.Exit(2)
	}
}
