package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rollwise/cutplan/pkg/application/services/orchestration"
	"github.com/rollwise/cutplan/pkg/domain/entities"
	"github.com/rollwise/cutplan/pkg/infrastructure/repositories/memory"
)

func main() {
	ctx := context.Background()

	// One paper grade, three ordered widths.
	spec, err := entities.NewPaperSpec(120, decimal.RequireFromString("18.0"), "Natural")
	if err != nil {
		log.Fatal(err)
	}

	orderID := uuid.New()
	demand := []struct {
		width string
		qty   int
	}{
		{"25.00", 62},
		{"28.00", 82},
		{"30.00", 28},
	}

	var orders []entities.DemandItem
	for _, d := range demand {
		item, err := entities.NewDemandItem(
			spec,
			entities.MustWidth(d.width),
			d.qty,
			entities.Origin{Kind: entities.OriginOrder, ID: orderID, Ref: "ORD-00001"},
			decimal.Zero,
		)
		if err != nil {
			log.Fatal(err)
		}
		orders = append(orders, *item)
	}

	orchestrator, err := orchestration.NewPlanningOrchestrator(
		orchestration.DefaultConfig(),
		memory.NewPendingRepository(),
		memory.NewRemnantRepository(),
		nil,
		nil,
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Planning cutting patterns for 172 ordered rolls...")
	result, err := orchestrator.Plan(ctx, orchestration.PlanRequest{Orders: orders})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(result.GetSummary())
	fmt.Println()
	for _, group := range result.Groups {
		fmt.Printf("Patterns for %s:\n", group.Spec)
		for _, inst := range group.Instances {
			fmt.Printf("  %d x [%s] trim %s\n", inst.Repeat, inst.Pattern.Key(), inst.Pattern.Trim)
		}
	}
}
