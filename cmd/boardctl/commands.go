package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"issueboard/internal/board"
	"issueboard/internal/export"
	"issueboard/internal/model"
)

func (cli *CLI) addCommands() {
	cli.root.AddCommand(cli.boardCommand(), cli.moveCommand(), cli.assignCommand(), cli.exportCommand())
}

func (cli *CLI) boardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print the board grouped by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cli.context()
			defer cancel()

			f := cli.filter()
			if err := checkStatusFilter(f.Status); err != nil {
				return err
			}
			ctrl, err := cli.openBoard(ctx)
			if err != nil {
				return err
			}
			view := board.NewView(ctrl.Snapshot().Issues, f)
			return cli.printView(view)
		},
	}
	addScopeFlags(cmd.Flags())
	addFilterFlags(cmd.Flags())
	cmd.Flags().StringP("format", "o", "table", "Output format: table, json or yaml")
	return cmd
}

func checkStatusFilter(status string) error {
	if status == "" || status == board.StatusAll {
		return nil
	}
	if _, err := model.ParseStatus(status); err != nil {
		return fmt.Errorf("invalid status filter %q", status)
	}
	return nil
}

func (cli *CLI) printView(view board.View) error {
	switch format := cli.v.GetString("format"); format {
	case "json":
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case "yaml":
		return yaml.NewEncoder(cli.out).Encode(view)
	case "table":
		tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
		for _, col := range view.Columns {
			fmt.Fprintf(tw, "%s (%d)\n", col.Label, len(col.Issues))
			for _, is := range col.Issues {
				fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", is.Key, is.Summary, is.InternalPriority, is.AssigneeEmail())
			}
		}
		if len(view.Other) > 0 {
			fmt.Fprintf(tw, "Other (%d)\n", len(view.Other))
			for _, is := range view.Other {
				fmt.Fprintf(tw, "  %s\t%s\t%s\n", is.Key, is.Summary, is.Status)
			}
		}
		fmt.Fprintf(tw, "%d of %d issues\n", view.Matched, view.Total)
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func (cli *CLI) moveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <issue-id|KEY> <status>",
		Short: "Change an issue's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := model.ParseStatus(args[1])
			if err != nil {
				return fmt.Errorf("invalid status %q", args[1])
			}
			ctx, cancel := cli.context()
			defer cancel()

			ctrl, err := cli.openBoard(ctx)
			if err != nil {
				return err
			}
			id, err := issueRef(ctrl, args[0])
			if err != nil {
				return err
			}
			return ctrl.ChangeStatus(ctx, id, status)
		},
	}
	addScopeFlags(cmd.Flags())
	return cmd
}

func (cli *CLI) assignCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <issue-id|KEY> <user-id|none>",
		Short: "Assign an issue, or unassign it with none",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			assignee, err := board.ParseAssignee(args[1])
			if err != nil {
				return fmt.Errorf("invalid user ID %q", args[1])
			}
			ctx, cancel := cli.context()
			defer cancel()

			ctrl, err := cli.openBoard(ctx)
			if err != nil {
				return err
			}
			id, err := issueRef(ctrl, args[0])
			if err != nil {
				return err
			}
			return ctrl.Assign(ctx, id, assignee)
		},
	}
	addScopeFlags(cmd.Flags())
	return cmd
}

// issueRef accepts either an issue ID or its key (PROJ-12) among the held issues.
func issueRef(ctrl *board.Controller, ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	for _, is := range ctrl.Snapshot().Issues {
		if strings.EqualFold(is.Key, ref) {
			return is.ID, nil
		}
	}
	return uuid.Nil, fmt.Errorf("%s: %w", ref, board.ErrIssueNotFound)
}

func (cli *CLI) exportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered issues to an .xlsx or .csv file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cli.context()
			defer cancel()

			f := cli.filter()
			if err := checkStatusFilter(f.Status); err != nil {
				return err
			}
			ctrl, err := cli.openBoard(ctx)
			if err != nil {
				return err
			}
			issues := board.Apply(ctrl.Snapshot().Issues, f)
			key := ctrl.Scope().ProjectKey

			out := cli.v.GetString("out")
			if out == "" {
				out = export.FileName(key)
			}
			fmt.Fprintln(cli.out, export.Summary(len(issues), key, f))
			return writeExport(out, export.Project(issues, time.Local))
		},
	}
	addScopeFlags(cmd.Flags())
	addFilterFlags(cmd.Flags())
	cmd.Flags().String("out", "", "Output file; .csv writes CSV, anything else xlsx (default tasks_<KEY>.xlsx)")
	return cmd
}

func writeExport(path string, rows []export.Row) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return export.WriteCSV(f, rows)
	}
	return export.WriteXLSX(f, rows)
}
