package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/joacominatel/telemetrydash/internal/config"
	"github.com/spf13/cobra"
)

// secrets is swapped in tests.
var secrets config.Secrets = config.NewKeyring()

var connectionCmd = &cobra.Command{
	Use:   "connection",
	Short: "Manage saved connections",
}

var connectionAddCmd = &cobra.Command{
	Use:   "add <dsn>",
	Short: "Save a connection profile",
	Long: `Save a connection profile parsed from a PostgreSQL DSN.

The password is stored in the OS keyring and never written to the
config file.`,
	Args: cobra.ExactArgs(1),
	RunE: runConnectionAdd,
}

var connectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved connection profiles",
	Args:  cobra.NoArgs,
	RunE:  runConnectionList,
}

var connectionRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a saved connection profile and its stored password",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectionRemove,
}

func init() {
	connectionAddCmd.Flags().String("name", "", "profile name (default derived from host and database)")
	connectionAddCmd.Flags().Bool("default", false, "make this the default connection")
	connectionCmd.AddCommand(connectionAddCmd, connectionListCmd, connectionRemoveCmd)
	rootCmd.AddCommand(connectionCmd)
}

func runConnectionAdd(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	makeDefault, _ := cmd.Flags().GetBool("default")

	conn, err := config.ParseDSN(args[0])
	if err != nil {
		return err
	}
	if name != "" {
		conn.Name = name
	}

	loader, cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.HasConnection(conn.Name) {
		return fmt.Errorf("connection %q already exists", conn.Name)
	}

	cfg.AddConnection(conn)
	if makeDefault || cfg.Preferences.DefaultConnection == "" {
		cfg.Preferences.DefaultConnection = conn.Name
	}
	if err := loader.Save(cfg, secrets); err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Saved connection %s (%s)\n", conn.Name, conn.DisplayString())
	return nil
}

func runConnectionList(cmd *cobra.Command, _ []string) error {
	_, cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(cfg.Connections) == 0 {
		fmt.Fprintln(out, "No saved connections")
		return nil
	}
	for _, c := range cfg.Connections {
		marker := " "
		if c.Name == cfg.Preferences.DefaultConnection {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-30s %s\n", marker, c.Name, c.DisplayString())
	}
	return nil
}

func runConnectionRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	loader, cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	if !cfg.RemoveConnection(name) {
		return fmt.Errorf("connection %q not found", name)
	}
	if err := secrets.DeletePassword(name); err != nil {
		return fmt.Errorf("delete password for %s: %w", name, err)
	}
	if err := loader.Save(cfg, secrets); err != nil {
		return err
	}

	color.New(color.FgYellow).Fprintf(cmd.OutOrStdout(), "Removed connection %s\n", name)
	return nil
}
