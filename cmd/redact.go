package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/andresmejia3/facecrypt/internal/face"
	"github.com/andresmejia3/facecrypt/internal/logging"
	"github.com/andresmejia3/facecrypt/internal/utils"
)

var (
	redactInput  string
	redactOutput string
	redactAll    bool
)

var redactCmd = &cobra.Command{
	Use:   "redact",
	Short: "Write a privacy preview with every detected face blurred",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runRedact(redactInput, redactOutput, redactAll)
	},
}

func init() {
	redactCmd.Flags().StringVarP(&redactInput, "input", "i", "", "Path to input image")
	// Shadows the global --output directory: redact writes a single file.
	redactCmd.Flags().StringVarP(&redactOutput, "output", "o", "redacted.png", "Path to output image (format from extension)")
	redactCmd.Flags().BoolVar(&redactAll, "all", false, "Skip detection and blur the whole image")
	addDetectFlags(redactCmd)

	redactCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(redactCmd)
}

func runRedact(input, output string, all bool) error {
	// Safety Check: Prevent overwriting the input image
	inAbs, _ := filepath.Abs(input)
	outAbs, _ := filepath.Abs(output)
	if inAbs == outAbs {
		return fail("Configuration Error", fmt.Errorf("input and output paths must be different"))
	}

	format, err := imaging.FormatFromFilename(output)
	if err != nil {
		return fail("Unsupported output format", err)
	}

	raw, err := utils.ReadInput(input, cfg.MaxInputBytes)
	if err != nil {
		return fail("Unable to read input image", err)
	}
	img, err := face.Decode(raw)
	if err != nil {
		return fail("Unable to decode input image", err)
	}

	var faces face.DetectionResult
	if !all {
		cascade, err := loadCascade()
		if err != nil {
			return err
		}
		if faces, err = face.Detect(img, cascade, cfg.Detect); err != nil {
			return fail("Detection failed", err)
		}
	}

	blurred, err := face.Redact(img, faces)
	if err != nil {
		return fail("Redaction failed", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, blurred, format); err != nil {
		return fail("Unable to encode output image", err)
	}
	if err := utils.WriteFileAtomic(output, buf.Bytes(), 0o600); err != nil {
		return fail("Unable to write output image", err)
	}

	logging.Component(logger, "redact").Info("preview written", "input", input, "output", output, "faces", len(faces))
	fmt.Fprintln(os.Stdout, output)
	return nil
}
