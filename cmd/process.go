package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/andresmejia3/facecrypt/internal/config"
	ferrors "github.com/andresmejia3/facecrypt/internal/errors"
	"github.com/andresmejia3/facecrypt/internal/logging"
	"github.com/andresmejia3/facecrypt/internal/types"
	"github.com/andresmejia3/facecrypt/internal/utils"
	"github.com/andresmejia3/facecrypt/internal/worker"
)

const (
	edgeSuffix      = "_edge.png"
	blurSuffix      = "_blur.png"
	containerSuffix = ".enc"
	decryptedSuffix = "_decrypted"
)

var (
	processInputs []string
	processJSON   bool
)

var processCmd = &cobra.Command{
	Use:   "process [images...]",
	Short: "Detect faces, write edge and blur previews, and encrypt the original",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runProcess(cmd.Context(), append(processInputs, args...))
	},
}

func init() {
	processCmd.Flags().StringArrayVarP(&processInputs, "input", "i", nil, "Path to an input image (repeatable)")
	processCmd.Flags().StringP("password", "p", "", "Encryption password (default: FACECRYPT_PASSWORD or prompt)")
	processCmd.Flags().IntP("engines", "e", config.DefaultEngines(), "Number of images processed in parallel")
	processCmd.Flags().BoolVar(&processJSON, "json", false, "Print the report as JSON")
	addDetectFlags(processCmd)

	rootCmd.AddCommand(processCmd)
}

func runProcess(ctx context.Context, inputs []string) error {
	if len(inputs) == 0 {
		return fail("No input images", ferrors.ErrEmptyInput)
	}

	pw, err := password(true)
	if err != nil {
		return err
	}
	cascade, err := loadCascade()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Output, 0o700); err != nil {
		return fail("Unable to create output directory", err)
	}

	engine := worker.NewEngine(cascade, cfg.Detect, logging.Component(logger, "engine"))
	log := logging.Component(logger, "process")

	tasks := make([]types.ImageTask, len(inputs))
	for i, in := range inputs {
		tasks[i] = types.ImageTask{Index: i, Path: in}
	}

	bar := progressbar.NewOptions(len(tasks),
		progressbar.OptionSetDescription("Processing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	results := worker.Run(ctx, cfg.Engines, tasks, func(_ context.Context, task types.ImageTask) (types.Report, error) {
		raw, err := utils.ReadInput(task.Path, cfg.MaxInputBytes)
		if err != nil {
			return types.Report{}, err
		}
		art, err := engine.Process(raw, pw)
		if err != nil {
			return types.Report{}, err
		}
		return writeArtifacts(cfg.Output, task.Path, art)
	}, func() { bar.Add(1) })
	bar.Finish()
	fmt.Fprintln(os.Stderr)

	reports := make([]types.Report, len(results))
	failed := 0
	for i, r := range results {
		reports[i] = r.Value
		reports[i].Input = r.Task.Path
		if r.Err != nil {
			failed++
			reports[i].Error = describe(r.Err)
			log.Warn("input failed", "input", r.Task.Path, "error", r.Err)
			continue
		}
		log.Info("input processed", "input", r.Task.Path, "token", r.Value.Token, "faces", r.Value.FaceCount)
	}

	if err := printReports(os.Stdout, reports, processJSON); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fail("Interrupted", err)
	}
	if failed > 0 {
		return fail("Processing incomplete", fmt.Errorf("%d of %d inputs failed", failed, len(inputs)))
	}
	return nil
}

// writeArtifacts persists the three artifacts of one upload under dir,
// named by the artifact token.
func writeArtifacts(dir, input string, art *types.Artifacts) (types.Report, error) {
	report := types.Report{
		Input:         input,
		Token:         art.Token,
		FaceCount:     len(art.Faces),
		EdgePath:      utils.ArtifactPath(dir, art.Token, edgeSuffix),
		BlurPath:      utils.ArtifactPath(dir, art.Token, blurSuffix),
		ContainerPath: utils.ArtifactPath(dir, art.Token, containerSuffix),
	}

	files := []struct {
		path string
		data []byte
	}{
		{report.EdgePath, art.Edge},
		{report.BlurPath, art.Blur},
		{report.ContainerPath, art.Container},
	}
	for _, f := range files {
		if err := utils.WriteFileAtomic(f.path, f.data, 0o600); err != nil {
			return types.Report{}, err
		}
	}
	return report, nil
}

// describe is the one-line form of a per-input failure.
func describe(err error) string {
	if ferrors.IsKnown(err) {
		return utils.UserMessage(err)
	}
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}
	return err.Error()
}

func printReports(w io.Writer, reports []types.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "INPUT\tTOKEN\tFACES\tRESULT")
	fmt.Fprintln(tw, "-----\t-----\t-----\t------")
	for _, r := range reports {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\t-\t-\t%s\n", r.Input, r.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.Input, r.Token, r.FaceCount, r.ContainerPath)
	}
	return tw.Flush()
}
