package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"liftlog/internal/ingestlog"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect the ingestion log",
	}

	dbCmd.AddCommand(newDBStatsCommand(ctx))
	dbCmd.AddCommand(newDBFilesCommand(ctx))
	dbCmd.AddCommand(newDBTranscriptionsCommand(ctx))
	dbCmd.AddCommand(newDBClearCommand(ctx))

	return dbCmd
}

func newDBStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show ingestion log row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var stats ingestlog.Stats
			if err := ctx.getJSON(cmd.Context(), "/api/db/stats", &stats); err != nil {
				return err
			}
			if !isTerminal(cmd.OutOrStdout()) {
				return writeJSON(cmd, stats)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Audio files:     %d\n", stats.AudioFiles)
			fmt.Fprintf(out, "Transcriptions:  %d\n", stats.Transcriptions)
			fmt.Fprintf(out, "Extractions:     %d\n", stats.Extractions)
			return nil
		},
	}
}

func newDBFilesCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List uploaded audio files",
		RunE: func(cmd *cobra.Command, args []string) error {
			var response struct {
				AudioFiles []ingestlog.AudioFile `json:"audio_files"`
				Count      int                   `json:"count"`
			}
			path := "/api/db/audio-files?limit=" + strconv.Itoa(limit) + "&offset=" + strconv.Itoa(offset)
			if err := ctx.getJSON(cmd.Context(), path, &response); err != nil {
				return err
			}
			if !isTerminal(cmd.OutOrStdout()) {
				return writeJSON(cmd, response)
			}
			out := cmd.OutOrStdout()
			if response.Count == 0 {
				fmt.Fprintln(out, "No audio files recorded")
				return nil
			}
			rows := make([][]string, 0, len(response.AudioFiles))
			for _, file := range response.AudioFiles {
				rows = append(rows, []string{
					file.FileID,
					file.Filename,
					strconv.FormatInt(file.FileSize, 10),
					file.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"File ID", "Filename", "Bytes", "Uploaded"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "Maximum number of rows")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of rows to skip")
	return cmd
}

func newDBTranscriptionsCommand(ctx *commandContext) *cobra.Command {
	var fileID string
	var limit int

	cmd := &cobra.Command{
		Use:   "transcriptions",
		Short: "List stored transcriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var transcriptions []ingestlog.Transcription
			if fileID != "" {
				var response struct {
					Transcriptions []ingestlog.Transcription `json:"transcriptions"`
				}
				path := "/api/db/audio-files/" + url.PathEscape(fileID) + "/transcriptions"
				if err := ctx.getJSON(cmd.Context(), path, &response); err != nil {
					return err
				}
				transcriptions = response.Transcriptions
			} else {
				var response struct {
					Transcriptions []ingestlog.Transcription `json:"transcriptions"`
				}
				path := "/api/db/transcriptions?limit=" + strconv.Itoa(limit)
				if err := ctx.getJSON(cmd.Context(), path, &response); err != nil {
					return err
				}
				transcriptions = response.Transcriptions
			}

			if !isTerminal(cmd.OutOrStdout()) {
				return writeJSON(cmd, transcriptions)
			}
			out := cmd.OutOrStdout()
			if len(transcriptions) == 0 {
				fmt.Fprintln(out, "No transcriptions recorded")
				return nil
			}
			rows := make([][]string, 0, len(transcriptions))
			for _, transcription := range transcriptions {
				text := transcription.Text
				if len(text) > 60 {
					text = text[:57] + "..."
				}
				rows = append(rows, []string{
					transcription.TranscriptionID,
					transcription.FileID,
					text,
					transcription.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Transcription ID", "File ID", "Text", "Created"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&fileID, "file", "", "Only list transcriptions for this file id")
	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "Maximum number of rows")
	return cmd
}

func newDBClearCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every row from the ingestion log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to clear the ingestion log without --yes")
			}
			if err := ctx.doJSON(cmd.Context(), "DELETE", "/api/db/clear", nil, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Ingestion log cleared")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "Confirm the deletion")
	return cmd
}
