// Command pdfkit is the toolkit's CLI collaborator (spec §6.3):
// subcommands for composing PDFs from Markdown, extracting text, and
// the page-level operations, each a thin wrapper over the pdfkit
// package. It keeps the teacher CLI's dual logfile/stderr reporting and
// panic-recovery guard, rehosted on cobra subcommands per the expanded
// specification's DOMAIN STACK (the teacher itself configures with
// stdlib flag; a dedicated subcommand tree is cobra's native shape).
package main

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/benedoc-inc/pdfkit"
	"github.com/benedoc-inc/pdfkit/element"
	"github.com/benedoc-inc/pdfkit/pageops"
	"github.com/benedoc-inc/pdfkit/pdfdoc"
)

var (
	logFilePath string
	verbose     bool
	logF        *os.File
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if logF != nil {
			fmt.Fprintf(logF, "Error: %v\n", err)
			logF.Close()
		}
		os.Exit(1)
	}
	if logF != nil {
		logF.Close()
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pdfkit",
		Short:         "Compose, parse, validate, and manipulate PDF files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
	}
	root.PersistentFlags().StringVar(&logFilePath, "log", "", "path to log file (logs to stderr if empty)")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")

	root.AddCommand(
		newCreateCmd(),
		newMDToPDFCmd(),
		newMDToPDFMetaCmd(),
		newPDFToMDCmd(),
		newExtractCmd(),
		newAddImageCmd(),
		newMergeCmd(),
		newSplitCmd(),
		newRotateCmd(),
		newReorderCmd(),
		newWatermarkCmd(),
	)
	return root
}

func setupLogging() error {
	if logFilePath == "" {
		log.SetOutput(os.Stderr)
		return nil
	}
	f, err := os.Create(logFilePath)
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	logF = f
	log.SetOutput(f)
	fmt.Fprintf(os.Stderr, "Logging to: %s\n", logFilePath)
	fmt.Fprintf(f, "=== pdfkit started ===\n")
	return nil
}

// logSuccess reports a completed operation on the logfile (if any),
// stderr, and stdout — the teacher CLI's triple-channel convention.
func logSuccess(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logF != nil {
		fmt.Fprintln(logF, msg)
	}
	fmt.Fprintln(os.Stderr, msg)
	fmt.Println(msg)
}

func logVerbosef(format string, args ...interface{}) {
	if verbose {
		log.Printf(format, args...)
	}
}

func parseFontFamily(name string) (pdfkit.FontFamily, error) {
	switch strings.ToLower(name) {
	case "helvetica", "":
		return pdfkit.Helvetica, nil
	case "times":
		return pdfkit.Times, nil
	case "courier":
		return pdfkit.Courier, nil
	default:
		return "", fmt.Errorf("unknown font family %q (want helvetica, times, or courier)", name)
	}
}

func newCreateCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a minimal blank PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			elements := []element.Element{element.Paragraph("")}
			buf, err := pdfkit.GeneratePDFBytes(elements, pdfkit.Helvetica, 11, pdfkit.Portrait())
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, buf, 0644); err != nil {
				return err
			}
			logSuccess("Created %s", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "out.pdf", "output PDF path")
	return cmd
}

func newMDToPDFCmd() *cobra.Command {
	var (
		output    string
		landscape bool
		font      string
		fontSize  float64
	)
	cmd := &cobra.Command{
		Use:   "md-to-pdf <input.md>",
		Short: "Render a Markdown file to PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			family, err := parseFontFamily(font)
			if err != nil {
				return err
			}
			layout := pdfkit.Portrait()
			if landscape {
				layout = pdfkit.Landscape()
			}
			logVerbosef("parsing %s (%d bytes)", args[0], len(src))
			elements := pdfkit.ParseMarkdown(string(src))

			buf, err := pdfkit.GeneratePDFBytes(elements, family, fontSize, layout)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, buf, 0644); err != nil {
				return err
			}
			logSuccess("Wrote %s (%d bytes) from %s", output, len(buf), args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "out.pdf", "output PDF path")
	cmd.Flags().BoolVar(&landscape, "landscape", false, "use landscape page layout")
	cmd.Flags().StringVar(&font, "font", "helvetica", "font family: helvetica, times, courier")
	cmd.Flags().Float64Var(&fontSize, "font-size", 11, "base font size in points")
	return cmd
}

func newMDToPDFMetaCmd() *cobra.Command {
	var (
		output   string
		title    string
		author   string
		subject  string
		keywords string
	)
	cmd := &cobra.Command{
		Use:   "md-to-pdf-meta <input.md>",
		Short: "Render a Markdown file to PDF, stamping document metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			elements := pdfkit.ParseMarkdown(string(src))
			meta := pdfkit.Metadata{Title: title, Author: author, Subject: subject, Keywords: keywords}
			buf, err := pdfkit.CreatePDFWithMetadata(elements, pdfkit.DefaultComposeOptions(), meta, time.Now())
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, buf, 0644); err != nil {
				return err
			}
			logSuccess("Wrote %s with metadata from %s", output, args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "out.pdf", "output PDF path")
	cmd.Flags().StringVar(&title, "title", "", "document title")
	cmd.Flags().StringVar(&author, "author", "", "document author")
	cmd.Flags().StringVar(&subject, "subject", "", "document subject")
	cmd.Flags().StringVar(&keywords, "keywords", "", "document keywords")
	return cmd
}

// newPDFToMDCmd extracts a PDF's plain text and writes it verbatim to a
// .md file: spec §4.6's extractor recovers text only, with no markup
// structure to reconstruct, so there is no richer Markdown to emit than
// the extracted text itself.
func newPDFToMDCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "pdf-to-md <input.pdf>",
		Short: "Extract a PDF's text into a Markdown file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			doc, err := pdfkit.ParsePDF(buf)
			if err != nil {
				return err
			}
			text, err := pdfkit.ExtractText(doc)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, []byte(text), 0644); err != nil {
				return err
			}
			logSuccess("Wrote %s from %s", output, args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "out.md", "output Markdown path")
	return cmd
}

func newExtractCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "extract <input.pdf>",
		Short: "Extract a PDF's plain text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			doc, err := pdfkit.ParsePDF(buf)
			if err != nil {
				return err
			}
			text, err := pdfkit.ExtractText(doc)
			if err != nil {
				return err
			}
			if output == "" {
				fmt.Println(text)
				return nil
			}
			if err := os.WriteFile(output, []byte(text), 0644); err != nil {
				return err
			}
			logSuccess("Wrote %s from %s", output, args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (stdout if empty)")
	return cmd
}

func newAddImageCmd() *cobra.Command {
	var (
		output string
		page   int
		x, y   float64
		width  float64
		height float64
	)
	cmd := &cobra.Command{
		Use:   "add-image <input.pdf> <image.jpg>",
		Short: "Stamp a JPEG image onto one page of a PDF at an explicit rectangle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pdfBytes, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			imgBytes, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			if _, err := jpeg.DecodeConfig(bytes.NewReader(imgBytes)); err != nil {
				return fmt.Errorf("%s is not a valid JPEG: %w", args[1], err)
			}
			doc, err := pageops.AddImage(pdfBytes, page, imgBytes, x, y, width, height)
			if err != nil {
				return err
			}
			out, err := pdfdoc.Write(doc)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, out, 0644); err != nil {
				return err
			}
			logSuccess("Wrote %s (image stamped on page %d)", output, page)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "out.pdf", "output PDF path")
	cmd.Flags().IntVar(&page, "page", 1, "1-based page index to stamp")
	cmd.Flags().Float64Var(&x, "x", 0, "lower-left X of the image rectangle")
	cmd.Flags().Float64Var(&y, "y", 0, "lower-left Y of the image rectangle")
	cmd.Flags().Float64Var(&width, "width", 100, "image rectangle width")
	cmd.Flags().Float64Var(&height, "height", 100, "image rectangle height")
	return cmd
}

func newMergeCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "merge <input.pdf>...",
		Short: "Merge PDFs into one output file, in argument order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := make([][]byte, len(args))
			for i, path := range args {
				buf, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				inputs[i] = buf
			}
			out, err := pdfkit.MergePDFs(inputs)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, out, 0644); err != nil {
				return err
			}
			logSuccess("Wrote %s (merged %d inputs)", output, len(args))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "out.pdf", "output PDF path")
	return cmd
}

func newSplitCmd() *cobra.Command {
	var (
		output string
		start  int
		end    int
	)
	cmd := &cobra.Command{
		Use:   "split <input.pdf>",
		Short: "Keep a page range [start, end] (1-based, inclusive) of a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			out, err := pdfkit.SplitPDF(buf, start, end)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, out, 0644); err != nil {
				return err
			}
			logSuccess("Wrote %s (pages %d-%d of %s)", output, start, end, args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "out.pdf", "output PDF path")
	cmd.Flags().IntVar(&start, "start", 1, "first page to keep (1-based)")
	cmd.Flags().IntVar(&end, "end", 1, "last page to keep (1-based, inclusive)")
	return cmd
}

func newRotateCmd() *cobra.Command {
	var (
		output string
		angle  int
	)
	cmd := &cobra.Command{
		Use:   "rotate <input.pdf>",
		Short: "Set every page's rotation to an absolute angle (0, 90, 180, or 270)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			out, err := pdfkit.RotatePDF(buf, angle)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, out, 0644); err != nil {
				return err
			}
			logSuccess("Wrote %s (rotated %d degrees)", output, angle)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "out.pdf", "output PDF path")
	cmd.Flags().IntVar(&angle, "angle", 0, "rotation angle: 0, 90, 180, or 270")
	return cmd
}

func newReorderCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "reorder <order> <input.pdf>",
		Short: "Reorder a PDF's pages to a comma-separated 1-based permutation, e.g. 3,1,2",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			permutation, err := parsePermutation(args[0])
			if err != nil {
				return err
			}
			buf, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			out, err := pdfkit.ReorderPages(buf, permutation)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, out, 0644); err != nil {
				return err
			}
			logSuccess("Wrote %s (reordered to %s)", output, args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "out.pdf", "output PDF path")
	return cmd
}

func parsePermutation(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid page order %q: %w", s, err)
		}
		out[i] = n
	}
	return out, nil
}

func newWatermarkCmd() *cobra.Command {
	var (
		output  string
		opacity float64
		size    float64
	)
	cmd := &cobra.Command{
		Use:   "watermark <text> <input.pdf>",
		Short: "Draw a rotated, semi-transparent text watermark on every page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			out, err := pdfkit.WatermarkPDF(buf, args[0], size, opacity)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, out, 0644); err != nil {
				return err
			}
			logSuccess("Wrote %s (watermarked %q)", output, args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "out.pdf", "output PDF path")
	cmd.Flags().Float64Var(&opacity, "opacity", 0.3, "watermark opacity, 0-1")
	cmd.Flags().Float64Var(&size, "size", 48, "watermark font size in points")
	return cmd
}
