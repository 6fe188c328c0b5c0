package commands

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rollwise/cutplan/pkg/application/services/generator"
	"github.com/rollwise/cutplan/pkg/domain/entities"
)

func newPatternsCmd() *cobra.Command {
	var (
		configPath string
		widthsArg  string
		gsm        int
		bf         string
		shade      string
	)

	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List candidate cutting patterns for a set of widths",
		Long:  "Enumerates every pattern the optimizer would consider for the given piece widths, in selection order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatterns(cmd, configPath, widthsArg, gsm, bf, shade)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "cutplan.yaml", "path to cutplan config file")
	cmd.Flags().StringVarP(&widthsArg, "widths", "w", "", "comma-separated piece widths in inches (required)")
	cmd.Flags().IntVar(&gsm, "gsm", 120, "paper grammage")
	cmd.Flags().StringVar(&bf, "bf", "18.0", "burst factor")
	cmd.Flags().StringVar(&shade, "shade", "Natural", "paper shade")
	_ = cmd.MarkFlagRequired("widths")
	return cmd
}

func runPatterns(cmd *cobra.Command, configPath, widthsArg string, gsm int, bf, shade string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	planCfg, err := cfg.Planning()
	if err != nil {
		return err
	}

	bfDec, err := decimal.NewFromString(bf)
	if err != nil {
		return fmt.Errorf("invalid bf %q: %w", bf, err)
	}
	spec, err := entities.NewPaperSpec(gsm, bfDec, shade)
	if err != nil {
		return err
	}

	var widths []entities.Width
	for _, field := range strings.Split(widthsArg, ",") {
		w, err := entities.ParseWidth(strings.TrimSpace(field))
		if err != nil {
			return fmt.Errorf("invalid width %q: %w", field, err)
		}
		widths = append(widths, w)
	}

	gen, err := generator.New(planCfg.RollWidth, planCfg.TrimCap, planCfg.MaxPieces, planCfg.MaxPatterns)
	if err != nil {
		return err
	}
	patterns, err := gen.Generate(spec, widths)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d candidate patterns for roll width %s (trim cap %s):\n\n",
		len(patterns), planCfg.RollWidth, planCfg.TrimCap)
	fmt.Fprintf(out, "%-4s %-40s %-8s %-10s\n", "#", "Pattern", "Pieces", "Trim")
	fmt.Fprintf(out, "%-4s %-40s %-8s %-10s\n",
		"----", "----------------------------------------", "--------", "----------")
	for i, p := range patterns {
		fmt.Fprintf(out, "%-4d %-40s %-8d %-10s\n", i+1, p.Key(), len(p.Pieces), p.Trim)
	}
	return nil
}
