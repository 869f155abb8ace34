package worker

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	ferrors "github.com/andresmejia3/facecrypt/internal/errors"
	"github.com/andresmejia3/facecrypt/internal/face"
	"github.com/andresmejia3/facecrypt/internal/types"
	"github.com/andresmejia3/facecrypt/internal/utils"
	"github.com/andresmejia3/facecrypt/internal/vault"
)

// Engine runs the full upload pipeline. One Engine is shared by every
// goroutine of a batch: the cascade is read-only and the sealer draws fresh
// randomness per call.
type Engine struct {
	Cascade face.Cascade
	Detect  face.DetectOptions
	Sealer  *vault.Sealer
	Logger  *slog.Logger
}

func NewEngine(cascade face.Cascade, opts face.DetectOptions, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		Cascade: cascade,
		Detect:  opts,
		Sealer:  vault.NewSealer(),
		Logger:  logger,
	}
}

// Process decodes raw, detects faces, renders both previews and encrypts
// the original bytes. The container always holds raw exactly as uploaded,
// not a re-encoding of the decoded pixels.
func (e *Engine) Process(raw []byte, password string) (*types.Artifacts, error) {
	if len(raw) == 0 || password == "" {
		return nil, ferrors.ErrEmptyInput
	}

	img, err := face.Decode(raw)
	if err != nil {
		return nil, err
	}

	faces, err := face.Detect(img, e.Cascade, e.Detect)
	if err != nil {
		return nil, err
	}
	e.Logger.Debug("faces detected", "count", len(faces), "width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	edges, err := face.RenderEdges(img, faces)
	if err != nil {
		return nil, err
	}
	blurred, err := face.Redact(img, faces)
	if err != nil {
		return nil, err
	}

	edgePNG, err := face.EncodePNG(edges)
	if err != nil {
		return nil, fmt.Errorf("edge preview: %w", err)
	}
	blurPNG, err := face.EncodePNG(blurred)
	if err != nil {
		return nil, fmt.Errorf("blur preview: %w", err)
	}

	container, err := e.sealer().Encrypt(raw, password)
	if err != nil {
		return nil, err
	}

	return &types.Artifacts{
		Token:     utils.GenerateToken(),
		Faces:     faces,
		Edge:      edgePNG,
		Blur:      blurPNG,
		Container: container,
	}, nil
}

// Reveal decrypts a container and checks that the plaintext is an image. It
// returns the exact original bytes plus a PNG rendering of them. A container
// that opens but does not hold an image fails with ErrDecodeFailure, and the
// plaintext is still returned so callers can offer it raw.
func (e *Engine) Reveal(blob []byte, password string) (plaintext, preview []byte, err error) {
	plaintext, err = e.sealer().Decrypt(blob, password)
	if err != nil {
		return nil, nil, err
	}

	img, err := face.Decode(plaintext)
	if err != nil {
		return plaintext, nil, fmt.Errorf("decrypted, but the result is not a readable image: %w", err)
	}
	preview, err = face.EncodePNG(img)
	if err != nil {
		return plaintext, nil, err
	}
	return plaintext, preview, nil
}

func (e *Engine) sealer() *vault.Sealer {
	if e.Sealer == nil {
		return vault.NewSealer()
	}
	return e.Sealer
}

// Result pairs a task with its pipeline outcome.
type Result[T any] struct {
	Task  types.ImageTask
	Value T
	Err   error
}

// Run applies fn to every task with at most engines running at once and
// returns the results in task order. A failing task does not stop the batch;
// its error is kept in its Result. Only cancellation of ctx aborts the run,
// in which case unstarted tasks report ctx.Err().
func Run[T any](ctx context.Context, engines int, tasks []types.ImageTask, fn func(context.Context, types.ImageTask) (T, error), done func()) []Result[T] {
	if engines < 1 {
		engines = 1
	}

	results := make([]Result[T], len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(engines)

	for i, task := range tasks {
		results[i].Task = task
		if err := gctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Value, results[i].Err = fn(gctx, task)
			if done != nil {
				done()
			}
			return nil
		})
	}
	g.Wait()
	return results
}
