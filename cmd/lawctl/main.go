// Package main provides lawctl, an offline tool that segments legal
// documents and extracts their outline without the server.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dgallion1/lawgest/internal/chunker"
	"github.com/dgallion1/lawgest/internal/doctree"
	"github.com/dgallion1/lawgest/internal/outline"
	"github.com/dgallion1/lawgest/internal/parser"
	"github.com/dgallion1/lawgest/internal/pipeline"
	"github.com/dgallion1/lawgest/internal/segment"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var pdfFallback bool

	cmd := &cobra.Command{
		Use:           "lawctl",
		Short:         "Segment and outline Vietnamese legal documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVar(&pdfFallback, "pdftotext", true, "Fall back to pdftotext when a PDF has no text layer")

	cmd.AddCommand(segmentCmd(&pdfFallback), outlineCmd(&pdfFallback))
	return cmd
}

func segmentCmd(pdfFallback *bool) *cobra.Command {
	var (
		size    int
		overlap int
		name    string
	)
	def := chunker.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "segment FILE",
		Short: "Split a document into chapter/article chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadFile(args[0], *pdfFallback)
			if err != nil {
				return err
			}
			if name == "" {
				name = filepath.Base(args[0])
			}
			chunks := segment.Segment(doc.Text(), name, chunker.Config{Size: size, Overlap: overlap})
			if chunks == nil {
				chunks = []segment.Chunk{}
			}
			return writeJSON(cmd.OutOrStdout(), chunks)
		},
	}

	cmd.Flags().IntVar(&size, "size", def.Size, "Maximum chunk length in characters")
	cmd.Flags().IntVar(&overlap, "overlap", def.Overlap, "Characters shared by consecutive chunks")
	cmd.Flags().StringVar(&name, "name", "", "Program name stamped on chunks (default: file name)")
	return cmd
}

func outlineCmd(pdfFallback *bool) *cobra.Command {
	var (
		start     int
		end       int
		questions bool
	)

	cmd := &cobra.Command{
		Use:   "outline FILE",
		Short: "Extract the term tree of a page or paragraph range",
		Long: `Extract the term tree of pages (PDF) or paragraphs (other formats)
start..end, 1-indexed and inclusive. --end 0 means the last unit.
FILE "-" reads plain text lines from stdin and ignores the range.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				terms []outline.Term
				err   error
			)
			if args[0] == "-" {
				terms, err = outline.ExtractReader(cmd.InOrStdin())
			} else {
				terms, err = outlineFile(args[0], start, end, *pdfFallback)
			}
			if err != nil {
				return err
			}
			if questions {
				return writeJSON(cmd.OutOrStdout(), outline.Questions(terms))
			}
			return writeJSON(cmd.OutOrStdout(), terms)
		},
	}

	cmd.Flags().IntVar(&start, "start", 1, "First page or paragraph")
	cmd.Flags().IntVar(&end, "end", 0, "Last page or paragraph")
	cmd.Flags().BoolVar(&questions, "questions", false, "Print the leaf questions instead of the tree")
	return cmd
}

func outlineFile(path string, start, end int, pdfFallback bool) ([]outline.Term, error) {
	doc, err := loadFile(path, pdfFallback)
	if err != nil {
		return nil, err
	}
	if end == 0 {
		end = doc.Len()
	}
	return pipeline.ExtractRange(doc, start, end)
}

func loadFile(path string, pdfFallback bool) (*doctree.Document, error) {
	p, err := parser.ForFile(path)
	if err != nil {
		return nil, err
	}
	if pp, ok := p.(*parser.PDFParser); ok {
		pp.FallbackPdftotext = pdfFallback
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
