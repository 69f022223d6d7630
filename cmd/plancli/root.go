package main

import (
	"encoding/json"
	"fmt"
	"os"

	"floorplan-core/internal/common/config"
	"floorplan-core/internal/planner/models"
	"floorplan-core/internal/planner/service"
	"floorplan-core/internal/planner/snapshot"

	"github.com/spf13/cobra"
)

var (
	planPath     string
	settingsPath string
)

var rootCmd = &cobra.Command{
	Use:   "plancli",
	Short: "plancli - offline geometry queries over a floor plan snapshot",
	Long: `plancli loads a plan snapshot (walls and openings) from YAML and runs
the planner geometry against it: wall topology, room detection,
snapping and opening placement checks. Results are printed as JSON.`,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&planPath, "plan", "p", "plan.yaml", "plan snapshot in YAML")
	rootCmd.PersistentFlags().StringVarP(&settingsPath, "settings", "s", "", "tool settings in YAML (defaults when empty)")
}

// loadPlan reads the snapshot and builds a planner without a store.
func loadPlan() (models.Snapshot, *service.Planner, error) {
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return models.Snapshot{}, nil, err
	}
	snap, err := snapshot.Load(planPath)
	if err != nil {
		return models.Snapshot{}, nil, err
	}
	return snap, service.NewPlanner(nil, settings), nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
