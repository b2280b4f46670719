package predictor

import (
	"io"
	"os"

	"github.com/YuminosukeSato/sleepq/pkg/errors"
)

// withArtifact opens path and passes it to decode. A missing file becomes an
// ArtifactMissingError; open and decode failures become ArtifactCorruptError.
func withArtifact(artifact, path string, decode func(r io.Reader) error) error {
	if path == "" {
		return errors.NewArtifactMissingError(artifact, path)
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewArtifactMissingError(artifact, path)
		}
		return errors.NewArtifactCorruptError(artifact, path, "cannot open", err)
	}
	defer f.Close()

	if err := decode(f); err != nil {
		if errors.Kind(err) == errors.KindArtifactCorrupt {
			return err
		}
		return errors.NewArtifactCorruptError(artifact, path, "cannot decode", err)
	}
	return nil
}
