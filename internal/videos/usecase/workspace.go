package usecase

import (
	"os"
	"path"
	"path/filepath"

	"github.com/amankumarsingh77/repair-video-stitcher/pkg/logger"
)

// workspace is the temp directory owned by exactly one run.
type workspace struct {
	dir string
}

func newWorkspace(base, runID string) *workspace {
	if base == "" {
		base = os.TempDir()
	}
	return &workspace{dir: filepath.Join(base, "job-"+runID)}
}

func (w *workspace) prepare() error {
	return os.MkdirAll(w.dir, 0o700)
}

func (w *workspace) path(name string) string {
	return filepath.Join(w.dir, name)
}

// cleanup removes everything the run created. Failures are only logged.
func (w *workspace) cleanup(log logger.Logger) {
	if err := os.RemoveAll(w.dir); err != nil {
		log.Warnf("cleanup %s: %v", w.dir, err)
	}
}

func extOr(location, fallback string) string {
	if ext := path.Ext(location); ext != "" && len(ext) <= 5 {
		return ext
	}
	return fallback
}
