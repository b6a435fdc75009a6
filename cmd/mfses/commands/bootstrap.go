package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/seesaw/mfses/internal/universe"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Seed the instrument universe (run once)",
	Long: `Loads the tracked instrument universe: curated seed tickers plus
reference-listing discovery, classified by sector and market cap tier.
Every instrument starts COLD and due immediately, so the first
pipeline cycle picks the whole universe up.

Example:
  go run ./cmd/mfses bootstrap --dry-run
  go run ./cmd/mfses bootstrap --seed-only
  go run ./cmd/mfses bootstrap`,
	RunE: runBootstrap,
}

var (
	bootstrapDryRun   bool
	bootstrapSeedOnly bool
	bootstrapMax      int
)

func init() {
	rootCmd.AddCommand(bootstrapCmd)
	bootstrapCmd.Flags().BoolVar(&bootstrapDryRun, "dry-run", false, "classify and count without writing")
	bootstrapCmd.Flags().BoolVar(&bootstrapSeedOnly, "seed-only", false, "skip discovery, load only the curated seed list")
	bootstrapCmd.Flags().IntVar(&bootstrapMax, "max", universe.DefaultMaxInstruments, "universe size cap")
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	a, closeApp, err := buildApp()
	if err != nil {
		return err
	}
	defer closeApp()

	fmt.Println("=== MFSES Universe Bootstrap ===")
	if bootstrapDryRun {
		fmt.Println("Mode: DRY RUN")
	}

	boot := universe.NewBootstrapper(a.polygon, a.instruments, a.states, a.logger)
	result, err := boot.Run(cmd.Context(), universe.Options{
		SeedOnly:       bootstrapSeedOnly,
		DryRun:         bootstrapDryRun,
		MaxInstruments: bootstrapMax,
	})
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	fmt.Printf("\nUniverse: %d instruments\n", result.Total)

	fmt.Println("\nBy tier:")
	tiers := make([]int, 0, len(result.ByTier))
	for tier := range result.ByTier {
		tiers = append(tiers, tier)
	}
	sort.Ints(tiers)
	for _, tier := range tiers {
		fmt.Printf("  Tier %d: %d\n", tier, result.ByTier[tier])
	}

	fmt.Println("\nBy sector:")
	sectors := make([]string, 0, len(result.BySector))
	for sector := range result.BySector {
		sectors = append(sectors, sector)
	}
	sort.Slice(sectors, func(i, j int) bool {
		return result.BySector[sectors[i]] > result.BySector[sectors[j]]
	})
	for _, sector := range sectors {
		fmt.Printf("  %-16s %d\n", sector, result.BySector[sector])
	}

	if !bootstrapDryRun {
		fmt.Printf("\nInserted %d instruments, seeded %d states (all COLD, due now)\n",
			result.Inserted, result.StatesSeeded)
	}
	return nil
}
