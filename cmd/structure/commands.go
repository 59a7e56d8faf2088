package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-structurer/internal/docgen"
	"alfredoptarigan/resume-structurer/internal/models"
	"alfredoptarigan/resume-structurer/internal/services"
	"alfredoptarigan/resume-structurer/internal/structurer"
)

// newRootCmd wires the offline commands. None of them call the extraction
// gateway, so they work without an API key.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "structure",
		Short:         "Structure and render résumé payloads offline",
		Long:          `Turn extraction payloads into validated résumé records and render records into documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newStructureCmd(), newRenderCmd(), newExtractCmd(), newFormatsCmd())
	return root
}

func newStructureCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:     "structure [payload-file|-]",
		Aliases: []string{"record"},
		Short:   "Structure an extraction payload into a résumé record",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			st, err := structurer.New(structurer.DefaultConfig())
			if err != nil {
				return err
			}

			record, warnings, err := st.Structure(string(payload))
			if err != nil {
				return err
			}
			if strict && len(warnings) > 0 {
				return fmt.Errorf("%d warning(s), first: %s: %s", len(warnings), warnings[0].Field, warnings[0].Message)
			}
			if warnings == nil {
				warnings = []models.Warning{}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(models.StructureResponse{Record: record, Warnings: warnings})
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail when structuring produces warnings")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var (
		format string
		out    string
		chrome string
	)

	cmd := &cobra.Command{
		Use:   "render [record-file|-]",
		Short: "Render a résumé record into a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			var record models.ResumeRecord
			if err := json.Unmarshal(data, &record); err != nil {
				return fmt.Errorf("failed to decode record: %w", err)
			}

			st, err := structurer.New(structurer.DefaultConfig())
			if err != nil {
				return err
			}
			if err := st.Check(&record); err != nil {
				return err
			}

			gen, err := docgen.NewGenerator(docgen.DefaultRegistry(docgen.RegistryOptions{ChromePath: chrome}), docgen.Letter, nil)
			if err != nil {
				return err
			}

			f := docgen.ParseFormat(format)
			if !gen.Supports(f) {
				return &docgen.RenderError{Format: f, Err: docgen.ErrUnsupportedFormat}
			}

			doc, err := gen.Render(cmd.Context(), &record, f)
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(doc)
				return err
			}
			if err := os.WriteFile(out, doc, 0644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✅ Wrote %s (%d bytes)\n", out, len(doc))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(docgen.FormatPDF), "output format")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (stdout when empty)")
	cmd.Flags().StringVar(&chrome, "chrome-path", "", "Chrome binary for chrome-pdf")
	return cmd
}

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [resume-file]",
		Short: "Print the plain text of a PDF or DOCX résumé",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := services.NewTextExtractor().ExtractFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "📄 %s, %d page(s)\n", text.ContentType, text.PageCount)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text.Text)
			return err
		},
	}
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the available output formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := docgen.DefaultRegistry(docgen.RegistryOptions{}).Formats()
			names := make([]string, len(formats))
			for i, f := range formats {
				names[i] = string(f)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
			return err
		},
	}
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
