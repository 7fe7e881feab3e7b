package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"liftlog/internal/resolver"
)

type resolveResponse struct {
	resolver.Result
	TimestampISO string `json:"timestamp_iso"`
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var count int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve <exercise name>",
		Short: "Resolve a spoken exercise name to a catalog entry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			payload := map[string]any{"exercise_name": query}
			if cmd.Flags().Changed("count") {
				payload["candidate_count"] = count
			}

			var result resolveResponse
			if err := ctx.postJSON(cmd.Context(), "/api/resolve-exercise", payload, &result); err != nil {
				return err
			}

			if asJSON || !isTerminal(cmd.OutOrStdout()) {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			if !result.Success {
				fmt.Fprintf(out, "No match for %q (%s)\n", query, result.Method)
				if result.Error != "" {
					fmt.Fprintln(out, result.Error)
				}
				return nil
			}

			fmt.Fprintf(out, "%s  (%s)\n", result.ExerciseName, result.ExerciseID)
			fmt.Fprintf(out, "  Method:      %s\n", result.Method)
			fmt.Fprintf(out, "  Confidence:  %.2f\n", result.ConfidenceScore)
			fmt.Fprintf(out, "  Candidates:  %d\n", result.CandidatesCount)
			if details := result.ExerciseDetails; details != nil {
				fmt.Fprintf(out, "  Equipment:   %s\n", displayList(details.Equipment))
				fmt.Fprintf(out, "  Target:      %s\n", displayList(details.TargetMuscles))
				fmt.Fprintf(out, "  Body parts:  %s\n", displayList(details.BodyParts))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", resolver.DefaultCandidateCount, "Number of candidates sent to the model")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON output")
	return cmd
}

func newCandidatesCommand(ctx *commandContext) *cobra.Command {
	var count int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "candidates <exercise name>",
		Short: "List the candidates the resolver would consider",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			payload := map[string]any{"exercise_name": query}
			if cmd.Flags().Changed("count") {
				payload["candidate_count"] = count
			}

			var response struct {
				Success    bool                 `json:"success"`
				Candidates []resolver.Candidate `json:"candidates"`
			}
			if err := ctx.postJSON(cmd.Context(), "/api/exercises/candidates", payload, &response); err != nil {
				return err
			}

			if asJSON || !isTerminal(cmd.OutOrStdout()) {
				return writeJSON(cmd, response)
			}

			out := cmd.OutOrStdout()
			if len(response.Candidates) == 0 {
				fmt.Fprintf(out, "No candidates for %q\n", query)
				return nil
			}

			rows := make([][]string, 0, len(response.Candidates))
			for _, candidate := range response.Candidates {
				rows = append(rows, []string{
					candidate.ExerciseID,
					candidate.Name,
					displayName(candidate.Equipment),
					displayName(candidate.TargetMuscles),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Name", "Equipment", "Target"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", resolver.DefaultCandidateCount, "Number of candidates to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON output")
	return cmd
}
