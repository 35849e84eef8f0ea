package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/granjaops/taskward/internal/config"
	"github.com/granjaops/taskward/internal/database"
	"github.com/granjaops/taskward/internal/models"
	"github.com/granjaops/taskward/internal/validation"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// feedConfigFile is the YAML shape accepted by `feedconfig import`
type feedConfigFile struct {
	Configs []struct {
		GroupType     string   `yaml:"group_type"`
		ScheduleTimes []string `yaml:"schedule_times"`
		Active        bool     `yaml:"active"`
	} `yaml:"configs"`
}

// NewFeedConfigCmd creates the feedconfig command with list and import subcommands.
func NewFeedConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedconfig",
		Short: "Manage feed configurations",
		Long:  "List or import the per-category feeding schedules used by the reconciler.",
	}
	cmd.AddCommand(newFeedConfigListCmd())
	cmd.AddCommand(newFeedConfigImportCmd())
	return cmd
}

func newFeedConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List feed configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			repo := database.NewFeedConfigRepository(db)
			configs, err := repo.List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list feed configurations: %w", err)
			}

			if len(configs) == 0 {
				fmt.Println("No feed configurations. Use 'feedconfig import' to add some.")
				return nil
			}

			fmt.Println("Feed configurations:")
			for _, c := range configs {
				state := "inactive"
				if c.Active {
					state = "active"
				}
				fmt.Printf("  - %s (%s): %s\n", c.GroupType, state, strings.Join(c.ScheduleTimes, ", "))
			}
			return nil
		},
	}
}

func newFeedConfigImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import feed configurations from a YAML file",
		Long:  "Replace the feed configuration of each group category listed in the file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			var file feedConfigFile
			if err := yaml.Unmarshal(data, &file); err != nil {
				return fmt.Errorf("failed to parse YAML: %w", err)
			}
			if len(file.Configs) == 0 {
				return fmt.Errorf("no configs found in %s", args[0])
			}

			for i, c := range file.Configs {
				if err := validation.ValidateGroupCategory(c.GroupType); err != nil {
					return fmt.Errorf("configs[%d]: %w", i, err)
				}
				for _, ts := range c.ScheduleTimes {
					if err := validation.ValidateScheduleTime(ts); err != nil {
						return fmt.Errorf("configs[%d]: %w", i, err)
					}
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			repo := database.NewFeedConfigRepository(db)
			ctx := context.Background()
			for _, c := range file.Configs {
				err := repo.Upsert(ctx, &models.FeedConfiguration{
					GroupType:     models.GroupCategory(c.GroupType),
					ScheduleTimes: c.ScheduleTimes,
					Active:        c.Active,
				})
				if err != nil {
					return fmt.Errorf("failed to save config for %s: %w", c.GroupType, err)
				}
				fmt.Printf("✓ Saved %s (%d times)\n", c.GroupType, len(c.ScheduleTimes))
			}
			return nil
		},
	}
}
