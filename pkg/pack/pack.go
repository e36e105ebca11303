package pack

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/flate"
	"github.com/ospreyhq/osprey-cli/pkg/config"
	"github.com/ospreyhq/osprey-cli/pkg/consts"
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

// Packager zips a project's provider files for distribution
type Packager struct {
	project *config.Project
	log     types.Logger
}

// New creates a packager for a project
func New(project *config.Project, log types.Logger) *Packager {
	return &Packager{project: project, log: log}
}

// Result describes a produced archive
type Result struct {
	// Path is the archive location
	Path string

	// Size is the archive size in bytes
	Size int64

	// Checksum is the hex SHA-256 of the archive
	Checksum string

	// Files is the number of files archived
	Files int
}

// Pack zips res/provider and dist/provider into
// dist/<NAME>-provider.zip. Checked-in resources win over bundled
// output when both carry the same relative path, matching the dev
// server's serving order.
func (p *Packager) Pack(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	roots := []string{
		filepath.Join(p.project.Dir, consts.ResourcesDir, "provider"),
		filepath.Join(p.project.Dir, consts.DistDir, "provider"),
	}

	outDir := filepath.Join(p.project.Dir, consts.DistDir)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, types.WrapError(err, "failed to create output directory")
	}
	outPath := filepath.Join(outDir, fmt.Sprintf("%s-provider.zip", p.project.Name()))

	outFile, err := os.Create(outPath)
	if err != nil {
		return nil, types.WrapError(err, "failed to create archive")
	}
	defer func() { _ = outFile.Close() }()

	zw := zip.NewWriter(outFile)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	seen := make(map[string]bool)
	files := 0
	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			name := filepath.ToSlash(rel)
			if seen[name] {
				return nil
			}
			seen[name] = true

			w, err := zw.Create(name)
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			if _, err := io.Copy(w, f); err != nil {
				return err
			}
			files++
			return nil
		})
		if err != nil {
			_ = zw.Close()
			return nil, types.WrapError(err, "failed to archive provider files")
		}
	}

	if err := zw.Close(); err != nil {
		return nil, types.WrapError(err, "failed to finalize archive")
	}
	if err := outFile.Close(); err != nil {
		return nil, types.WrapError(err, "failed to write archive")
	}

	if files == 0 {
		_ = os.Remove(outPath)
		return nil, fmt.Errorf("no provider files under %s or %s", roots[0], roots[1])
	}

	checksum, err := Checksum(outPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, types.WrapError(err, "failed to stat archive")
	}

	result := &Result{
		Path:     outPath,
		Size:     info.Size(),
		Checksum: checksum,
		Files:    files,
	}

	p.log.Info("provider packaged",
		"archive", outPath,
		"size", humanize.IBytes(uint64(result.Size)),
		"files", files,
		"sha256", checksum,
	)
	return result, nil
}

// Checksum computes the hex SHA-256 of a file
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", types.WrapError(err, "failed to open archive")
	}
	defer func() { _ = f.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", types.WrapError(err, "failed to checksum archive")
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
