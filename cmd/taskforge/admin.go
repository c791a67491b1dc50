package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/Strob0t/TaskForge/internal/adapter/postgres"
	"github.com/Strob0t/TaskForge/internal/config"
)

// runAdmin dispatches admin subcommands (migrate, rollback, list-filters).
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "migrate":
		return runAdminMigrate(args[1:])
	case "rollback":
		return runAdminRollback(args[1:])
	case "list-filters":
		return runAdminListFilters(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: taskforge admin <command> [options]

Commands:
  migrate          Apply pending database migrations
  rollback         Roll back database migrations
  list-filters     List saved task filters
  help             Show this help message

Examples:
  taskforge admin migrate
  taskforge admin rollback --steps 1
  taskforge admin list-filters --owner kermit
`)
}

func loadAdminStore() (*config.Config, *postgres.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	cleanup := func() {
		pool.Close()
	}
	return cfg, postgres.NewStore(pool), cleanup, nil
}

func runAdminMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := postgres.RunMigrations(context.Background(), cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Migrations applied")
	return nil
}

func runAdminRollback(args []string) error {
	fs := flag.NewFlagSet("rollback", flag.ContinueOnError)
	steps := fs.String("steps", "1", "number of migrations to roll back")
	if err := fs.Parse(args); err != nil {
		return err
	}

	n, err := strconv.Atoi(*steps)
	if err != nil || n < 1 {
		return fmt.Errorf("--steps must be a positive integer")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := postgres.RollbackMigrations(context.Background(), cfg.Postgres.DSN, n); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Rolled back %d migration(s)\n", n)
	return nil
}

func runAdminListFilters(args []string) error {
	fs := flag.NewFlagSet("list-filters", flag.ContinueOnError)
	owner := fs.String("owner", "", "only show filters owned by this user")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, store, cleanup, err := loadAdminStore()
	if err != nil {
		return err
	}
	defer cleanup()

	filters, err := store.ListFilters(context.Background(), *owner)
	if err != nil {
		return fmt.Errorf("list filters: %w", err)
	}

	if len(filters) == 0 {
		fmt.Println("No filters found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tOWNER\tREVISION\tCREATED")
	for i := range filters {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			filters[i].ID, filters[i].Name, filters[i].Owner, filters[i].Revision,
			filters[i].Created.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
