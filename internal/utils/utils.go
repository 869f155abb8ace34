package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"

	ferrors "github.com/andresmejia3/facecrypt/internal/errors"
)

// --- 1. Error Reporting ---

// UserMessage turns a pipeline failure into the message shown to the user.
// Authentication failures get one combined message on purpose: telling a
// wrong password apart from a damaged file would hand attackers an oracle.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ferrors.ErrEmptyInput):
		return "A file and a non-empty password are required."
	case errors.Is(err, ferrors.ErrMalformedContainer):
		return "Invalid file: this is not a facecrypt .enc container."
	case errors.Is(err, ferrors.ErrAuthenticationFailed):
		return "Decryption failed: wrong password or corrupted file."
	case errors.Is(err, ferrors.ErrDecodeFailure):
		return "Could not read the image. Make sure the file is a valid image (jpg/png)."
	default:
		return "Unexpected error."
	}
}

// ShowError prints the bordered error box to stderr. Taxonomy failures
// print only their user message; anything else also prints the details.
func ShowError(context string, err error) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()

	fmt.Fprintf(os.Stderr, "\n---------------------------------------------------------\n")
	fmt.Fprintf(os.Stderr, "%s %s\n", red("FACECRYPT ERROR:"), context)
	if err != nil {
		if ferrors.IsKnown(err) {
			fmt.Fprintf(os.Stderr, "%s\n", UserMessage(err))
		} else {
			fmt.Fprintf(os.Stderr, "DETAILS: %v\n", err)
		}
	}
	fmt.Fprintf(os.Stderr, "---------------------------------------------------------\n")
}

// Die is the unified exit strategy for fatal setup errors.
func Die(context string, err error) {
	ShowError(context, err)
	os.Exit(1)
}

// --- 2. Artifact Files ---

// GenerateToken returns a random 32-character hex token that names the
// artifacts of one request.
func GenerateToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ArtifactPath joins dir with "<token><suffix>", e.g. "abc..._edge.png".
func ArtifactPath(dir, token, suffix string) string {
	return filepath.Join(dir, token+suffix)
}

// ReadInput reads at most limit bytes from path. An empty file is
// ErrEmptyInput; a file over the limit is rejected rather than truncated.
func ReadInput(path string, limit int64) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("no input file: %w", ferrors.ErrEmptyInput)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%q is larger than %d bytes", path, limit)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%q is empty: %w", path, ferrors.ErrEmptyInput)
	}
	return data, nil
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it into place, so readers never observe a partial artifact.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("setting permissions on %q: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %q: %w", path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming into %q: %w", path, err)
	}
	return nil
}
