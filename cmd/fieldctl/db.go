package main

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/inventia-dev/fieldset/pkg/migrator"
)

type dbFlags struct {
	DSN         string
	Driver      string
	TablePrefix string
}

func (f *dbFlags) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.DSN, "db", "", "database DSN")
	cmd.Flags().StringVar(&f.Driver, "driver", "postgres", "database driver (postgres|mysql)")
	cmd.Flags().StringVar(&f.TablePrefix, "table-prefix", "cf_", "table prefix")
}

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "db", Short: "Manage the database schema"}
	cmd.AddCommand(newDBMigrateCmd())
	cmd.AddCommand(newDBVersionCmd())
	return cmd
}

func newDBMigrateCmd() *cobra.Command {
	var f dbFlags
	var target int
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.DSN == "" {
				return fmt.Errorf("--db is required")
			}
			db, err := sql.Open(f.Driver, f.DSN)
			if err != nil {
				return err
			}
			defer db.Close()
			m := migrator.New(f.Driver, f.TablePrefix)
			if err := m.Up(cmd.Context(), db, target); err != nil {
				return err
			}
			v, err := m.Current(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", v)
			return nil
		},
	}
	f.addFlags(cmd)
	cmd.Flags().IntVar(&target, "to", 0, "target version (0=latest)")
	return cmd
}

func newDBVersionCmd() *cobra.Command {
	var f dbFlags
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.DSN == "" {
				return fmt.Errorf("--db is required")
			}
			db, err := sql.Open(f.Driver, f.DSN)
			if err != nil {
				return err
			}
			defer db.Close()
			m := migrator.New(f.Driver, f.TablePrefix)
			v, err := m.Current(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", v)
			return nil
		},
	}
	f.addFlags(cmd)
	return cmd
}
