package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rollwise/cutplan/pkg/application/dto"
	"github.com/rollwise/cutplan/pkg/application/services/orchestration"
	"github.com/rollwise/cutplan/pkg/application/services/selector"
	"github.com/rollwise/cutplan/pkg/infrastructure/repositories/csv"
	"github.com/rollwise/cutplan/pkg/infrastructure/repositories/memory"
)

func newCompareCmd() *cobra.Command {
	var (
		configPath string
		demandFile string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare greedy and exact strategies on the same demand",
		Long:  "Runs both selection strategies against in-memory state and reports waste and backlog side by side. The persistent backlog is not touched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, configPath, demandFile)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "cutplan.yaml", "path to cutplan config file")
	cmd.Flags().StringVarP(&demandFile, "demand", "d", "", "path to demand CSV file (required)")
	_ = cmd.MarkFlagRequired("demand")
	return cmd
}

func runCompare(cmd *cobra.Command, configPath, demandFile string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	baseCfg, err := cfg.Planning()
	if err != nil {
		return err
	}

	orders, err := csv.NewLoader().LoadDemand(demandFile)
	if err != nil {
		return fmt.Errorf("loading demand: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	results := make(map[selector.Strategy]*dto.PlanningResult, 2)
	for _, strategy := range []selector.Strategy{selector.StrategyGreedy, selector.StrategyExact} {
		runCfg := baseCfg
		runCfg.Strategy = strategy
		orchestrator, err := orchestration.NewPlanningOrchestrator(
			runCfg, memory.NewPendingRepository(), nil, nil, logger)
		if err != nil {
			return err
		}
		result, err := orchestrator.Plan(cmd.Context(), orchestration.PlanRequest{Orders: orders})
		if err != nil {
			return fmt.Errorf("%s run: %w", strategy, err)
		}
		results[strategy] = result
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Strategy Comparison (%d demand lines)\n", len(orders))
	fmt.Fprintf(out, "=====================================\n\n")
	fmt.Fprintf(out, "%-20s %-12s %-12s\n", "", "greedy", "exact")
	fmt.Fprintf(out, "%-20s %-12s %-12s\n", "--------------------", "------------", "------------")

	greedy, exact := results[selector.StrategyGreedy], results[selector.StrategyExact]
	row := func(label, g, e string) {
		fmt.Fprintf(out, "%-20s %-12s %-12s\n", label, g, e)
	}
	row("Jumbos", fmt.Sprint(greedy.Waste.JumboCount), fmt.Sprint(exact.Waste.JumboCount))
	row("Set rolls", fmt.Sprint(greedy.Waste.SetRollCount), fmt.Sprint(exact.Waste.SetRollCount))
	row("Pieces", fmt.Sprint(greedy.Waste.PiecesProduced), fmt.Sprint(exact.Waste.PiecesProduced))
	row("Total trim", greedy.Waste.TotalTrim.StringFixed(2), exact.Waste.TotalTrim.StringFixed(2))
	row("Waste %", greedy.Waste.WastePercent.StringFixed(2), exact.Waste.WastePercent.StringFixed(2))
	row("High-trim rolls", fmt.Sprint(greedy.Waste.HighTrimInstances), fmt.Sprint(exact.Waste.HighTrimInstances))
	row("Deferred units", fmt.Sprint(len(greedy.PendingDeltas)), fmt.Sprint(len(exact.PendingDeltas)))
	row("Elapsed", greedy.Elapsed.String(), exact.Elapsed.String())

	if timedOut(exact) {
		fmt.Fprintf(out, "\nexact hit its time limit; figures show the best plan found\n")
	}
	return nil
}

func timedOut(result *dto.PlanningResult) bool {
	for _, g := range result.Groups {
		if g.TimedOut {
			return true
		}
	}
	return false
}
