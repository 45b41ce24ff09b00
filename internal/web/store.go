package web

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/ironsheep/image-brightness/internal/imaging"
	"github.com/ironsheep/image-brightness/internal/pipeline"
)

// Artifact file names inside a request directory.
const (
	OriginalImageName = "original.png"
	ModifiedImageName = "modified.png"
	OriginalPlotName  = "plot_original.png"
	ModifiedPlotName  = "plot_modified.png"
)

// ArtifactNames lists every file a stored request may contain.
var ArtifactNames = []string{OriginalImageName, ModifiedImageName, OriginalPlotName, ModifiedPlotName}

// requestIDBytes is the entropy of a generated request id (hex-encoded to
// twice as many characters).
const requestIDBytes = 16

// ErrArtifactNotFound is returned for unknown request ids or file names.
var ErrArtifactNotFound = errors.New("artifact not found")

// NewRequestID returns a random 32-character hex identifier.
func NewRequestID() (string, error) {
	b := make([]byte, requestIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate request id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ValidRequestID reports whether id has the shape produced by NewRequestID.
// Only such ids are ever joined into file system paths.
func ValidRequestID(id string) bool {
	if len(id) != requestIDBytes*2 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}

// Artifacts names the stored files of one request.
type Artifacts struct {
	ID            string
	OriginalImage string
	ModifiedImage string
	OriginalPlot  string
	ModifiedPlot  string
}

// ArtifactStore persists pipeline outputs under <dir>/<request id>/. Every
// request writes to its own directory, so concurrent requests never share
// file names.
type ArtifactStore struct {
	dir    string
	logger hclog.Logger
	now    func() time.Time
}

// NewArtifactStore creates dir if needed and returns a store rooted there.
func NewArtifactStore(dir string, logger hclog.Logger) (*ArtifactStore, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &ArtifactStore{dir: dir, logger: logger, now: time.Now}, nil
}

// Dir returns the store's root directory.
func (s *ArtifactStore) Dir() string {
	return s.dir
}

// Save writes the original image, modified image and both charts of res.
// Each file is written to a temporary name and renamed into place, so a
// reader never observes a partial file. On failure the request directory is
// removed.
func (s *ArtifactStore) Save(res *pipeline.Result) (*Artifacts, error) {
	if !ValidRequestID(res.ID) {
		return nil, fmt.Errorf("invalid request id %q", res.ID)
	}

	reqDir := filepath.Join(s.dir, res.ID)
	if err := os.MkdirAll(reqDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create request directory: %w", err)
	}

	var orig, mod bytes.Buffer
	if err := imaging.EncodePNG(&orig, res.Original); err != nil {
		os.RemoveAll(reqDir)
		return nil, err
	}
	if err := imaging.EncodePNG(&mod, res.Modified); err != nil {
		os.RemoveAll(reqDir)
		return nil, err
	}

	files := []struct {
		name string
		data []byte
	}{
		{OriginalImageName, orig.Bytes()},
		{ModifiedImageName, mod.Bytes()},
		{OriginalPlotName, res.OriginalChart},
		{ModifiedPlotName, res.ModifiedChart},
	}
	for _, f := range files {
		if err := writeFileAtomic(reqDir, f.name, f.data); err != nil {
			os.RemoveAll(reqDir)
			return nil, err
		}
	}

	s.logger.Debug("artifacts stored", "request_id", res.ID, "dir", reqDir)
	return &Artifacts{
		ID:            res.ID,
		OriginalImage: OriginalImageName,
		ModifiedImage: ModifiedImageName,
		OriginalPlot:  OriginalPlotName,
		ModifiedPlot:  ModifiedPlotName,
	}, nil
}

// Path resolves a stored artifact to its file path. It rejects anything
// that is not a well-formed request id and a known artifact name.
func (s *ArtifactStore) Path(id, name string) (string, error) {
	if !ValidRequestID(id) || !slices.Contains(ArtifactNames, name) {
		return "", ErrArtifactNotFound
	}
	p := filepath.Join(s.dir, id, name)
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return "", ErrArtifactNotFound
		}
		return "", fmt.Errorf("failed to stat artifact: %w", err)
	}
	return p, nil
}

// Prune removes request directories last modified more than maxAge ago and
// returns how many were removed. Entries that are not request directories
// are left alone.
func (s *ArtifactStore) Prune(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read upload directory: %w", err)
	}

	cutoff := s.now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if !e.IsDir() || !ValidRequestID(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.dir, e.Name())); err != nil {
			s.logger.Warn("failed to prune artifacts", "request_id", e.Name(), "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		s.logger.Info("pruned stored artifacts", "count", removed)
	}
	return removed, nil
}

func writeFileAtomic(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+name+"-*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
