package cmd

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	ferrors "github.com/andresmejia3/facecrypt/internal/errors"
	"github.com/andresmejia3/facecrypt/internal/logging"
	"github.com/andresmejia3/facecrypt/internal/utils"
	"github.com/andresmejia3/facecrypt/internal/vault"
	"github.com/andresmejia3/facecrypt/internal/worker"
)

var (
	decryptInput string
	decryptRaw   bool
)

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt a .enc container back into the original image",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runDecrypt(decryptInput, decryptRaw)
	},
}

func init() {
	decryptCmd.Flags().StringVarP(&decryptInput, "input", "i", "", "Path to the .enc container")
	decryptCmd.Flags().StringP("password", "p", "", "Decryption password (default: FACECRYPT_PASSWORD or prompt)")
	decryptCmd.Flags().BoolVar(&decryptRaw, "raw", false, "Write the original bytes instead of a PNG rendering")

	decryptCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(decryptCmd)
}

func runDecrypt(input string, raw bool) error {
	log := logging.Component(logger, "decrypt")

	blob, err := utils.ReadInput(input, cfg.MaxInputBytes+int64(vault.MinSize))
	if err != nil {
		return fail("Unable to read container", err)
	}
	// Reject non-containers before asking for a password.
	c, err := vault.Parse(blob)
	if err != nil {
		return fail("Unable to read container", err)
	}
	log.Debug("container parsed", "input", input, "bytes", c.Len(), "sealed", len(c.Sealed()),
		"salt", hex.EncodeToString(c.Salt()), "nonce", hex.EncodeToString(c.Nonce()))
	pw, err := password(false)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Output, 0o700); err != nil {
		return fail("Unable to create output directory", err)
	}

	engine := worker.NewEngine(nil, cfg.Detect, logging.Component(logger, "engine"))
	plaintext, preview, err := engine.Reveal(blob, pw)
	token := tokenFromPath(input)

	switch {
	case err == nil:
	case raw && errors.Is(err, ferrors.ErrDecodeFailure) && plaintext != nil:
		// The caller asked for bytes; they need not be an image.
		log.Warn("decrypted content is not an image", "input", input)
	case errors.Is(err, ferrors.ErrDecodeFailure):
		return fail("Decrypted, but the result is not a readable image", err)
	default:
		return fail("Decryption failed", err)
	}

	out := utils.ArtifactPath(cfg.Output, token, decryptedSuffix+".png")
	data := preview
	if raw {
		out = utils.ArtifactPath(cfg.Output, token, decryptedSuffix+rawExtension(plaintext))
		data = plaintext
	}
	if err := utils.WriteFileAtomic(out, data, 0o600); err != nil {
		return fail("Unable to write decrypted file", err)
	}

	log.Info("container decrypted", "input", input, "bytes", len(plaintext))
	fmt.Println(out)
	return nil
}

var tokenPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// tokenFromPath reuses the token of an artifact named "<token>.enc" so the
// decrypted file sits next to its previews; any other name gets a new token.
func tokenFromPath(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), containerSuffix)
	if tokenPattern.MatchString(name) {
		return name
	}
	return utils.GenerateToken()
}

// rawExtension names the file extension for decrypted bytes from their
// sniffed image format.
func rawExtension(data []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ".bin"
	}
	if format == "jpeg" {
		return ".jpg"
	}
	return "." + format
}
