package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	ferrors "github.com/andresmejia3/facecrypt/internal/errors"
	"github.com/andresmejia3/facecrypt/internal/face"
	"github.com/andresmejia3/facecrypt/internal/utils"
)

var (
	detectInputs []string
	detectJSON   bool
)

var detectCmd = &cobra.Command{
	Use:   "detect [images...]",
	Short: "Print the face boxes found in each image",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runDetect(append(detectInputs, args...))
	},
}

func init() {
	detectCmd.Flags().StringArrayVarP(&detectInputs, "input", "i", nil, "Path to an input image (repeatable)")
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "Print the boxes as JSON")
	addDetectFlags(detectCmd)

	rootCmd.AddCommand(detectCmd)
}

type detection struct {
	Input string               `json:"input"`
	Faces face.DetectionResult `json:"faces"`
}

func runDetect(inputs []string) error {
	if len(inputs) == 0 {
		return fail("No input images", ferrors.ErrEmptyInput)
	}
	cascade, err := loadCascade()
	if err != nil {
		return err
	}

	found := make([]detection, 0, len(inputs))
	for _, in := range inputs {
		raw, err := utils.ReadInput(in, cfg.MaxInputBytes)
		if err != nil {
			return fail(fmt.Sprintf("Unable to read %s", in), err)
		}
		img, err := face.Decode(raw)
		if err != nil {
			return fail(fmt.Sprintf("Unable to decode %s", in), err)
		}
		faces, err := face.Detect(img, cascade, cfg.Detect)
		if err != nil {
			return fail("Detection failed", err)
		}
		found = append(found, detection{Input: in, Faces: faces})
	}
	return printDetections(os.Stdout, found, detectJSON)
}

func printDetections(w io.Writer, found []detection, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(found)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "INPUT\tX\tY\tWIDTH\tHEIGHT")
	fmt.Fprintln(tw, "-----\t-\t-\t-----\t------")
	for _, d := range found {
		if len(d.Faces) == 0 {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\n", d.Input)
			continue
		}
		for _, b := range d.Faces {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", d.Input, b.X, b.Y, b.Width, b.Height)
		}
	}
	return tw.Flush()
}
