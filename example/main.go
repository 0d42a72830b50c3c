package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/vsinha/stocklink/pkg/application/services"
	"github.com/vsinha/stocklink/pkg/domain/entities"
	"github.com/vsinha/stocklink/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/stocklink/pkg/interfaces/cli/output"
)

func main() {
	ctx := context.Background()
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Two deliveries of bolts and one of nuts, then a week of picking
	source := memory.NewMovementRepository()
	for _, r := range []entities.RawMovement{
		{DocumentCode: "GR-1001", Product: "BOLT-M8", Date: "2024-03-01", Quantity: "500"},
		{DocumentCode: "GR-1002", Product: "BOLT-M8", Date: "2024-03-04", Quantity: "250"},
		{DocumentCode: "GR-1003", Product: "NUT-M8", Date: "2024-03-02", Quantity: "400"},
	} {
		source.AddReceipt(r)
	}
	for _, r := range []entities.RawMovement{
		{DocumentCode: "GI-2001", Product: "BOLT-M8", Date: "2024-03-03", Quantity: "320"},
		{DocumentCode: "GI-2002", Product: "NUT-M8", Date: "2024-03-03", Quantity: "320"},
		{DocumentCode: "GI-2003", Product: "BOLT-M8", Date: "2024-03-05", Quantity: "300"},
		{DocumentCode: "GI-2004", Product: "NUT-M8", Date: "2024-03-06", Quantity: "120"},
		{DocumentCode: "GI-2005", Product: "BOLT-M8", Date: "2024-03-06", Quantity: "-20"},
	} {
		source.AddIssue(r)
	}

	runs := memory.NewRunRepository()
	service := services.NewReconcileService(services.DefaultConfig(),
		services.WithSinks(runs),
		services.WithLogger(logger))

	result, err := service.Reconcile(ctx, source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reconciliation failed: %v\n", err)
		os.Exit(1)
	}

	if err := output.Generate(os.Stdout, result, output.Config{Format: "text", Preview: 10, Verbose: true}); err != nil {
		fmt.Fprintf(os.Stderr, "report failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nRemaining stock:")
	for _, b := range result.Balances {
		fmt.Printf("  %s %-8s %s of %s left\n", b.Receipt.DocumentCode, b.Receipt.Product, b.Remaining, b.Receipt.Quantity)
	}
}
