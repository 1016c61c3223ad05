package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/jbaris/grain-price-analyzer/database"
)

const (
	migrationDir = "migrations"
)

func newMigrateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "migrate",
		Short: "database migration commands",
		Run: func(c *cobra.Command, args []string) {
			c.Help()
		},
	}

	c.AddCommand(newMigrateCmdList())
	c.AddCommand(newMigrateCmdUp())
	c.AddCommand(newMigrateCmdDown())
	c.AddCommand(newMigrateCmdGoto())
	c.AddCommand(newMigrateCmdVersion())

	return c
}

func newMigrateCmdList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list migration versions",
		RunE: func(c *cobra.Command, args []string) error {
			return newMigrateCommand(migrationDir).List(c)
		},
	}
}

func newMigrateCmdUp() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "migrate up to latest version",
		RunE: func(c *cobra.Command, _ []string) error {
			return newMigrateCommand(migrationDir).Up(c)
		},
	}
}

func newMigrateCmdDown() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "migrate down all",
		RunE: func(c *cobra.Command, _ []string) error {
			return newMigrateCommand(migrationDir).Down(c)
		},
	}
}

func newMigrateCmdGoto() *cobra.Command {
	return &cobra.Command{
		Use:   "goto VERSION",
		Short: "migrate to a specific version",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return newMigrateCommand(migrationDir).Goto(c, args)
		},
	}
}

func newMigrateCmdVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "show current migration version",
		RunE: func(c *cobra.Command, _ []string) error {
			return newMigrateCommand(migrationDir).Version(c)
		},
	}
}

type migrateCommand struct {
	migrationDir string
}

func newMigrateCommand(migrationDir string) *migrateCommand {
	return &migrateCommand{migrationDir: migrationDir}
}

type migration struct {
	version     string
	description string
}

func (m *migrateCommand) List(cmd *cobra.Command) error {
	migrations, err := listMigrations(m.migrationDir)
	if err != nil {
		return err
	}

	for _, mig := range migrations {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", mig.version, mig.description)
	}

	return nil
}

func listMigrations(dir string) ([]migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	migrations := []migration{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}

		baseName := strings.TrimSuffix(name, ".up.sql")
		parts := strings.Split(baseName, "_")
		if len(parts) < 2 {
			continue
		}

		migrations = append(migrations, migration{version: parts[0], description: strings.Join(parts[1:], " ")})
	}

	return migrations, nil
}

func (m *migrateCommand) Up(cmd *cobra.Command) error {
	mig, closeDB, err := m.makeMigrationInstance(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDB()

	return ignoreNoChange(mig.Up())
}

func (m *migrateCommand) Down(cmd *cobra.Command) error {
	mig, closeDB, err := m.makeMigrationInstance(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDB()

	if !askConfirmation(cmd.InOrStdin(), cmd.OutOrStdout(), "Are you sure you want to apply all down migrations?") {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}

	return ignoreNoChange(mig.Down())
}

func (m *migrateCommand) Goto(cmd *cobra.Command, args []string) error {
	version, err := strconv.ParseUint(args[0], 10, 0)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", args[0], err)
	}

	mig, closeDB, err := m.makeMigrationInstance(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDB()

	cur, _, err := mig.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}

	if uint(version) < cur {
		if !askConfirmation(cmd.InOrStdin(), cmd.OutOrStdout(), "Are you sure you want to apply down migrations?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	return ignoreNoChange(mig.Migrate(uint(version)))
}

func (m *migrateCommand) Version(cmd *cobra.Command) error {
	mig, closeDB, err := m.makeMigrationInstance(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDB()

	version, dirty, err := mig.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(cmd.OutOrStdout(), "No migration applied yet.")
		return nil
	} else if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Current migration version: %d", version)
	if dirty {
		fmt.Fprint(cmd.OutOrStdout(), " (dirty)")
	}
	fmt.Fprintln(cmd.OutOrStdout())

	return nil
}

// makeMigrationInstance returns a migrate instance bound to the application
// schema. The returned func closes the connection.
func (m *migrateCommand) makeMigrationInstance(ctx context.Context) (*migrate.Migrate, func(), error) {
	db, err := connectRawDB(ctx)
	if err != nil {
		return nil, nil, err
	}

	driver, err := postgres.WithInstance(db.DB(), &postgres.Config{
		SchemaName: database.SchemaName,
	})
	if err != nil {
		db.Shutdown()
		return nil, nil, err
	}

	mig, err := migrate.NewWithDatabaseInstance("file://"+m.migrationDir, "postgres", driver)
	if err != nil {
		db.Shutdown()
		return nil, nil, err
	}

	return mig, func() { mig.Close() }, nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}

	return err
}

func askConfirmation(in io.Reader, out io.Writer, q string) bool {
	fmt.Fprintf(out, "%s (y/n): ", q)

	s := bufio.NewScanner(in)
	s.Scan()
	res := strings.TrimSpace(strings.ToLower(s.Text()))

	return res == "y" || res == "yes"
}
