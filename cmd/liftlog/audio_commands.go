package main

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

type uploadResponse struct {
	FileID        string `json:"file_id"`
	Filename      string `json:"filename"`
	FileSize      int64  `json:"file_size"`
	FileExtension string `json:"file_extension"`
	Message       string `json:"message"`
}

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "upload <audio file>",
		Short: "Upload an audio recording to the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open audio file: %w", err)
			}
			defer file.Close()

			var buf bytes.Buffer
			writer := multipart.NewWriter(&buf)
			part, err := writer.CreateFormFile("file", filepath.Base(path))
			if err != nil {
				return fmt.Errorf("build upload request: %w", err)
			}
			if _, err := io.Copy(part, file); err != nil {
				return fmt.Errorf("read audio file: %w", err)
			}
			if err := writer.Close(); err != nil {
				return fmt.Errorf("build upload request: %w", err)
			}

			var response uploadResponse
			if err := ctx.doRequest(cmd.Context(), "POST", "/api/upload-audio", &buf, writer.FormDataContentType(), &response); err != nil {
				return err
			}

			if asJSON || !isTerminal(cmd.OutOrStdout()) {
				return writeJSON(cmd, response)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%d bytes) as %s\n", response.Filename, response.FileSize, response.FileID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON output")
	return cmd
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var prompt string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "transcribe <file-id>",
		Short: "Transcribe a previously uploaded audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form := url.Values{"file_id": {args[0]}}
			if strings.TrimSpace(prompt) != "" {
				form.Set("prompt", prompt)
			}

			var response struct {
				Transcription string         `json:"transcription"`
				FileID        string         `json:"file_id"`
				LogID         string         `json:"log_id"`
				Metadata      map[string]any `json:"metadata"`
			}
			body := strings.NewReader(form.Encode())
			if err := ctx.doRequest(cmd.Context(), "POST", "/api/transcribe", body, "application/x-www-form-urlencoded", &response); err != nil {
				return err
			}

			if asJSON || !isTerminal(cmd.OutOrStdout()) {
				return writeJSON(cmd, response)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, response.Transcription)
			fmt.Fprintf(out, "\nLog id: %s\n", response.LogID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Optional transcription hint")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON output")
	return cmd
}
