// Command invoice-extract runs field extraction on a local PDF or text file
// and prints the extracted record as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridwanfathin/invoice-extractor-service/internal/extraction"
	"github.com/ridwanfathin/invoice-extractor-service/internal/logging"
	"github.com/ridwanfathin/invoice-extractor-service/internal/pdftext"
)

type options struct {
	text     bool
	withText bool
	logLevel string
}

// result is printed when --with-text is set
type result struct {
	FileName string      `json:"fileName"`
	Data     interface{} `json:"data"`
	RawText  string      `json:"rawText"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "invoice-extract [file]",
		Short: "Extract invoice fields from a PDF",
		Long: `Extract invoice number, dates, total, currency and vendor from a text-based PDF.
Use "-" to read from stdin and --text to treat the input as plain text instead of a PDF.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.text, "text", false, "treat input as plain text")
	cmd.Flags().BoolVar(&opts.withText, "with-text", false, "include the extracted text in the output")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, path string, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.NewWithOutput(cmd.ErrOrStderr(), "pretty", opts.logLevel)

	data, err := readInput(cmd, path)
	if err != nil {
		return err
	}
	log.WithField(logging.FieldFileSize, len(data)).Debug("Input read")

	text := string(data)
	if !opts.text {
		text, err = pdftext.NewPDFExtractor().ExtractText(ctx, data)
		if err != nil {
			return fmt.Errorf("extracting text from %s: %w", path, err)
		}
	}

	fields := extraction.Extract(text)
	log.WithField(logging.FieldFound, fields.FoundCount()).Info("Extraction complete")

	var out interface{} = fields
	if opts.withText {
		out = result{FileName: path, Data: fields, RawText: text}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return data, nil
}
