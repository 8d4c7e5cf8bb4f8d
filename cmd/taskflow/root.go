package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tgienger/taskflow/internal/config"
	"github.com/tgienger/taskflow/internal/db"
	"github.com/tgienger/taskflow/internal/logging"
	"github.com/tgienger/taskflow/internal/store"
	"github.com/tgienger/taskflow/internal/ui"
)

// cli holds what every command needs once flags are parsed
type cli struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logFile *os.File
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}
	root := &cobra.Command{
		Use:           "taskflow",
		Short:         "taskflow is a keyboard driven task board for the terminal",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          c.runBoard,
	}
	root.SetVersionTemplate("taskflow {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file path")
	flags.Bool("debug", false, "enable debug logging")
	flags.String("data-dir", "", "directory holding the board database")
	_ = c.v.BindPFlag("debug", flags.Lookup("debug"))
	_ = c.v.BindPFlag("data_dir", flags.Lookup("data-dir"))

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return c.setup(cmd, cmd == root)
	}
	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if c.logFile != nil {
			_ = c.logFile.Close()
		}
	}

	root.AddCommand(exportCmd(c))
	root.AddCommand(importCmd(c))
	root.AddCommand(projectsCmd(c))
	root.AddCommand(listCmd(c))
	root.AddCommand(addCmd(c))
	root.AddCommand(colorCmd(c))
	root.AddCommand(versionCmd())
	return root
}

// setup loads configuration and points the logger somewhere that will not
// fight with the output of cmd. The board owns the terminal, so it logs to a file.
func (c *cli) setup(cmd *cobra.Command, board bool) error {
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if !board {
		logging.Init(cfg.Debug, cmd.ErrOrStderr())
		return nil
	}
	f, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	c.logFile = f
	logging.Init(cfg.Debug, f)
	return nil
}

// openStore opens the database and loads the board from it
func (c *cli) openStore() (*store.Store, *db.DB, error) {
	database, err := db.Open(c.cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.New(database, store.WithDefaultProjects(c.cfg.DefaultProjects))
	if err != nil {
		_ = database.Close()
		return nil, nil, fmt.Errorf("load board: %w", err)
	}
	return st, database, nil
}

func (c *cli) runBoard(cmd *cobra.Command, args []string) error {
	st, database, err := c.openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	log.Info().Str("db", c.cfg.DBPath).Msg("taskflow: starting")
	app := ui.NewApp(st, database, ui.Options{
		Theme:         c.cfg.Theme,
		ShowCompleted: c.cfg.ShowCompleted,
		DataPath:      c.cfg.DBPath,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run board: %w", err)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taskflow %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
