package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tgienger/taskflow/internal/backup"
)

func exportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "export [dir]",
		Short: "Write a JSON backup of the board",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			st, database, err := c.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			path, err := backup.Export(st, dir, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func importCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the board with a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, database, err := c.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			if err := backup.Import(st, args[0]); err != nil {
				return err
			}
			snap := st.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d tasks in %d projects\n", len(snap.Todos), len(snap.Projects))
			return nil
		},
	}
}

func projectsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, database, err := c.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			for _, p := range st.ListProjects() {
				open := len(st.ListTasksByProject(p.Name, false))
				done := len(st.ListCompletedTasks(p.Name))
				line := fmt.Sprintf("%s\t%s\t%d open\t%d done", p.Name, p.Color, open, done)
				if p.Hidden {
					line += "\thidden"
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func listCmd(c *cli) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list [project]",
		Short: "Print tasks in board order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, database, err := c.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			var names []string
			if len(args) == 1 {
				p, err := st.Project(args[0])
				if err != nil {
					return err
				}
				names = []string{p.Name}
			} else {
				for _, p := range st.ListVisibleProjects() {
					names = append(names, p.Name)
				}
			}

			out := cmd.OutOrStdout()
			for i, name := range names {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, name)
				for _, t := range st.ListTasksByProject(name, all) {
					if t.Completed {
						fmt.Fprintf(out, "  x  %s\t%s\n", t.Text, t.ID)
						continue
					}
					fmt.Fprintf(out, "  %d. %s\t%s\n", t.Priority+1, t.Text, t.ID)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include completed tasks")
	return cmd
}

func addCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "add <project> <text>",
		Short: "Add a task to the end of a project",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, database, err := c.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			text := strings.TrimSpace(strings.Join(args[1:], " "))
			t, err := st.AddTask(text, args[0])
			if err != nil {
				return err
			}
			log.Debug().Str("id", string(t.ID)).Msg("task added")
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s\n", t.Project, t.Priority+1, t.ID)
			return nil
		},
	}
}

func colorCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "color <project> <hex>",
		Short: "Set the color of a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, database, err := c.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			if err := st.SetProjectColor(args[0], args[1]); err != nil {
				return err
			}
			p, err := st.Project(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.Name, p.Color)
			return nil
		},
	}
}
