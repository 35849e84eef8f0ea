package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/granjaops/taskward/internal/config"
	"github.com/granjaops/taskward/internal/database"
	"github.com/granjaops/taskward/internal/models"
	"github.com/granjaops/taskward/internal/validation"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// templateFile is the YAML shape accepted by `templates import`
type templateFile struct {
	Templates []struct {
		Title       string `yaml:"title"`
		DefaultTime string `yaml:"default_time"`
		TaskType    string `yaml:"task_type"`
		CategoryID  string `yaml:"category_id"`
		Active      bool   `yaml:"active"`
	} `yaml:"templates"`
}

// NewTemplatesCmd creates the templates command with list and import subcommands.
func NewTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage task templates",
		Long:  "List or import the recurring task templates used by the reconciler.",
	}
	cmd.AddCommand(newTemplatesListCmd())
	cmd.AddCommand(newTemplatesImportCmd())
	return cmd
}

func newTemplatesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List task templates",
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

			repo := database.NewTaskTemplateRepository(db)
			templates, err := repo.List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list task templates: %w", err)
			}

			if len(templates) == 0 {
				fmt.Println("No task templates. Use 'templates import' to add some.")
				return nil
			}

			fmt.Println("Task templates:")
			for _, t := range templates {
				state := "inactive"
				if t.Active {
					state = "active"
				}
				scope := "all batches"
				if t.CategoryID != nil {
					scope = "category " + t.CategoryID.String()
				}
				fmt.Printf("  - %s at %s (%s, %s, %s)\n", t.Title, t.DefaultTime, t.TaskType, state, scope)
			}
			return nil
		},
	}
}

func newTemplatesImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import task templates from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			var file templateFile
			if err := yaml.Unmarshal(data, &file); err != nil {
				return fmt.Errorf("failed to parse YAML: %w", err)
			}
			if len(file.Templates) == 0 {
				return fmt.Errorf("no templates found in %s", args[0])
			}

			for i, t := range file.Templates {
				if t.Title == "" {
					return fmt.Errorf("templates[%d]: title is required", i)
				}
				if err := validation.ValidateScheduleTime(t.DefaultTime); err != nil {
					return fmt.Errorf("templates[%d]: %w", i, err)
				}
				if t.TaskType != "" {
					if err := validation.ValidateTaskType(t.TaskType); err != nil {
						return fmt.Errorf("templates[%d]: %w", i, err)
					}
				}
				if t.CategoryID != "" {
					if _, err := uuid.Parse(t.CategoryID); err != nil {
						return fmt.Errorf("templates[%d]: invalid category_id: %w", i, err)
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

			repo := database.NewTaskTemplateRepository(db)
			ctx := context.Background()
			for _, t := range file.Templates {
				tpl := &models.TaskTemplate{
					Title:       t.Title,
					DefaultTime: t.DefaultTime,
					TaskType:    models.TaskType(t.TaskType),
					Active:      t.Active,
				}
				if t.CategoryID != "" {
					id := uuid.MustParse(t.CategoryID)
					tpl.CategoryID = &id
				}
				if err := repo.Create(ctx, tpl); err != nil {
					return fmt.Errorf("failed to save template %q: %w", t.Title, err)
				}
				fmt.Printf("✓ Saved %q at %s\n", t.Title, t.DefaultTime)
			}
			return nil
		},
	}
}
