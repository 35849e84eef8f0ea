package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/granjaops/taskward/internal/config"
	"github.com/granjaops/taskward/internal/database"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewMaintenanceCmd creates the maintenance command with a clear subcommand.
func NewMaintenanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Maintain the stored task collections",
	}
	cmd.AddCommand(newMaintenanceClearCmd())
	return cmd
}

func newMaintenanceClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all todos and pending tasks",
		Long:  "Wipe the todo and pending-task collections. The reconciler rebuilds today's automatic entries on its next pass.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to clear without --force")
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

			todoRepo := database.NewTodoRepository(db)
			pendingRepo := database.NewPendingTaskRepository(db)
			maintainer := database.NewMaintainer(db, todoRepo, pendingRepo, cfg.MaxStoredEntries, zap.NewNop())

			if err := maintainer.ClearAllTasks(context.Background()); err != nil {
				return fmt.Errorf("failed to clear tasks: %w", err)
			}
			fmt.Println("✓ Cleared todos and pending tasks")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm the wipe")
	return cmd
}
