package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rollwise/cutplan/pkg/application/services/orchestration"
	"github.com/rollwise/cutplan/pkg/domain/repositories"
	"github.com/rollwise/cutplan/pkg/infrastructure/config"
	"github.com/rollwise/cutplan/pkg/infrastructure/events"
	"github.com/rollwise/cutplan/pkg/infrastructure/repositories/csv"
	"github.com/rollwise/cutplan/pkg/infrastructure/repositories/memory"
	"github.com/rollwise/cutplan/pkg/infrastructure/repositories/sqlstore"
	"github.com/rollwise/cutplan/pkg/interfaces/cli/output"
)

func newPlanCmd() *cobra.Command {
	var (
		configPath      string
		demandFile      string
		remnantsFile    string
		includePending  bool
		includeRemnants bool
		ephemeral       bool
		format          string
		verbose         bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Run a planning cycle over a demand CSV",
		Long:  "Loads order demand, optimizes cutting patterns per paper specification, and settles the pending backlog.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, planOptions{
				configPath:      configPath,
				demandFile:      demandFile,
				remnantsFile:    remnantsFile,
				includePending:  includePending,
				includeRemnants: includeRemnants,
				ephemeral:       ephemeral,
				format:          format,
				verbose:         verbose,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "cutplan.yaml", "path to cutplan config file")
	cmd.Flags().StringVarP(&demandFile, "demand", "d", "", "path to demand CSV file (required)")
	cmd.Flags().StringVar(&remnantsFile, "remnants", "", "path to remnants CSV file to load before planning")
	cmd.Flags().BoolVar(&includePending, "include-pending", true, "include the open backlog in this run's demand")
	cmd.Flags().BoolVar(&includeRemnants, "include-remnants", false, "net remnant stock against demand before cutting")
	cmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "use in-memory stores instead of the database")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the full roll hierarchy")
	_ = cmd.MarkFlagRequired("demand")
	return cmd
}

type planOptions struct {
	configPath      string
	demandFile      string
	remnantsFile    string
	includePending  bool
	includeRemnants bool
	ephemeral       bool
	format          string
	verbose         bool
}

func runPlan(cmd *cobra.Command, opts planOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	planCfg, err := cfg.Planning()
	if err != nil {
		return err
	}

	pendingRepo, remnantRepo, err := openStores(cfg, opts.ephemeral)
	if err != nil {
		return err
	}

	loader := csv.NewLoader()
	orders, err := loader.LoadDemand(opts.demandFile)
	if err != nil {
		return fmt.Errorf("loading demand: %w", err)
	}

	if opts.remnantsFile != "" {
		remnants, err := loader.LoadRemnants(opts.remnantsFile)
		if err != nil {
			return fmt.Errorf("loading remnants: %w", err)
		}
		for _, rem := range remnants {
			if err := remnantRepo.Save(rem); err != nil {
				return fmt.Errorf("saving remnant: %w", err)
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
	orchestrator, err := orchestration.NewPlanningOrchestrator(
		planCfg, pendingRepo, remnantRepo, events.NewInMemoryEventStore(), logger)
	if err != nil {
		return err
	}

	result, err := orchestrator.Plan(cmd.Context(), orchestration.PlanRequest{
		Orders:          orders,
		IncludePending:  opts.includePending,
		IncludeRemnants: opts.includeRemnants,
	})
	if err != nil {
		return err
	}

	return output.Render(result, output.Config{
		Format:  opts.format,
		Verbose: opts.verbose,
	}, cmd.OutOrStdout())
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// No config file means defaults throughout.
		return config.Parse([]byte("{}"))
	}
	return config.Load(path)
}

func openStores(cfg *config.Config, ephemeral bool) (repositories.PendingRepository, repositories.RemnantRepository, error) {
	if ephemeral {
		return memory.NewPendingRepository(), memory.NewRemnantRepository(), nil
	}
	db, err := sqlstore.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	return sqlstore.NewPendingStore(db), sqlstore.NewRemnantStore(db), nil
}
