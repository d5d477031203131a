// Package resolve turns relative emulator and script paths into paths that
// exist on disk.
package resolve

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Resolver searches a list of root directories for relative paths.
type Resolver struct {
	roots  []string
	logger *logrus.Entry
}

// NewResolver returns a Resolver searching, in order: the working directory
// and its ancestors, the directory of the running executable, resourceDir and
// appDataDir. Empty directories are skipped.
func NewResolver(resourceDir, appDataDir string, logger *logrus.Entry) *Resolver {
	roots := []string{}

	if wd, err := os.Getwd(); err == nil {
		roots = append(roots, ancestors(wd)...)
	}

	if exe, err := os.Executable(); err == nil {
		roots = append(roots, filepath.Dir(exe))
	}

	for _, d := range []string{resourceDir, appDataDir} {
		if d != "" {
			roots = append(roots, d)
		}
	}

	return NewResolverWithRoots(roots, logger)
}

// NewResolverWithRoots returns a Resolver searching exactly the given roots.
func NewResolverWithRoots(roots []string, logger *logrus.Entry) *Resolver {
	return &Resolver{
		roots:  roots,
		logger: logger,
	}
}

// Roots returns the directories searched by the Resolver.
func (r *Resolver) Roots() []string {
	return r.roots
}

// Resolve returns the first existing candidate for raw. Absolute paths that
// exist are returned unchanged. If nothing is found, raw is returned as-is and
// the caller finds out when it tries to use it.
func (r *Resolver) Resolve(raw string) string {
	if raw == "" {
		return raw
	}

	if filepath.IsAbs(raw) {
		return raw
	}

	for _, root := range r.roots {
		candidate := filepath.Join(root, raw)
		if exists(candidate) {
			r.logger.WithFields(logrus.Fields{
				"path":     raw,
				"resolved": candidate,
			}).Debug("Resolved path")
			return candidate
		}
	}

	r.logger.WithField("path", raw).Debug("Path not resolved, using as-is")

	return raw
}

func ancestors(dir string) []string {
	res := []string{}
	for {
		res = append(res, dir)
		parent := filepath.Dir(dir)
		if parent == dir {
			return res
		}
		dir = parent
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
