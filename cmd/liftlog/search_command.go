package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"liftlog/internal/catalog"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy-search the exercise catalog by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			var response struct {
				Success bool   `json:"success"`
				Query   string `json:"query"`
				Results []struct {
					Exercise        catalog.Record `json:"exercise"`
					SimilarityScore float64        `json:"similarity_score"`
				} `json:"results"`
				Count int `json:"count"`
			}
			path := fmt.Sprintf("/api/exercises/search/%s?limit=%d", url.PathEscape(query), limit)
			if err := ctx.getJSON(cmd.Context(), path, &response); err != nil {
				return err
			}

			if asJSON || !isTerminal(cmd.OutOrStdout()) {
				return writeJSON(cmd, response)
			}

			out := cmd.OutOrStdout()
			if response.Count == 0 {
				fmt.Fprintf(out, "No exercises matching %q\n", query)
				return nil
			}

			rows := make([][]string, 0, len(response.Results))
			for _, result := range response.Results {
				rows = append(rows, []string{
					result.Exercise.ExerciseID,
					result.Exercise.Name,
					displayList(result.Exercise.Equipments),
					fmt.Sprintf("%.2f", result.SimilarityScore),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Name", "Equipment", "Score"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum number of results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON output")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <exercise-id>",
		Short: "Display a single exercise by its catalog id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var response struct {
				Success  bool           `json:"success"`
				Exercise catalog.Record `json:"exercise"`
			}
			path := "/api/exercises/" + url.PathEscape(args[0])
			if err := ctx.getJSON(cmd.Context(), path, &response); err != nil {
				return err
			}

			if asJSON || !isTerminal(cmd.OutOrStdout()) {
				return writeJSON(cmd, response)
			}

			out := cmd.OutOrStdout()
			exercise := response.Exercise
			fmt.Fprintf(out, "%s  (%s)\n", exercise.Name, exercise.ExerciseID)
			fmt.Fprintf(out, "  Equipment:   %s\n", displayList(exercise.Equipments))
			fmt.Fprintf(out, "  Target:      %s\n", displayList(exercise.TargetMuscles))
			fmt.Fprintf(out, "  Body parts:  %s\n", displayList(exercise.BodyParts))
			if exercise.GifURL != "" {
				fmt.Fprintf(out, "  Demo:        %s\n", exercise.GifURL)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON output")
	return cmd
}
