package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"liftlog/internal/daemon"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check daemon and database health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var response struct {
				Status    string `json:"status"`
				Service   string `json:"service"`
				Database  string `json:"database"`
				Exercises int    `json:"exercises"`
				Aliases   int    `json:"aliases"`
			}
			if err := ctx.getJSON(cmd.Context(), "/health", &response); err != nil {
				return err
			}
			if !isTerminal(cmd.OutOrStdout()) {
				return writeJSON(cmd, response)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon:    %s\n", response.Status)
			fmt.Fprintf(out, "Database:  %s\n", response.Database)
			fmt.Fprintf(out, "Catalog:   %d exercises, %d aliases\n", response.Exercises, response.Aliases)
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status daemon.Status
			if err := ctx.getJSON(cmd.Context(), "/api/status", &status); err != nil {
				return err
			}
			if !isTerminal(cmd.OutOrStdout()) {
				return writeJSON(cmd, status)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Running:   %s\n", yesNo(status.Running))
			fmt.Fprintf(out, "PID:       %d\n", status.PID)
			fmt.Fprintf(out, "Catalog:   %d exercises, %d aliases\n", status.CatalogExercises, status.CatalogAliases)
			fmt.Fprintf(out, "Database:  %s\n", status.DatabasePath)
			fmt.Fprintf(out, "Lock:      %s\n", status.LockFilePath)
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
