// Package collect copies the image files referenced by catalogue records
// from the photo archive folders into one destination directory.
package collect

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/collection-tools/registrar/internal/table"
)

// Report sums up a collection pass.
type Report struct {
	Records int
	Found   int
	Missing int
	Copied  int
}

// ImageAsset is one resolved image reference. Several records may point at
// the same source file; each copy is destination-scoped.
type ImageAsset struct {
	Source   string
	Readable bool
}

// Resolve locates a referenced image name under the roots, first hit wins,
// and checks that it decodes. An empty Source means no root carries the file.
func Resolve(roots []string, name string) ImageAsset {
	src := resolve(roots, name)
	if src == "" {
		return ImageAsset{}
	}
	return ImageAsset{Source: src, Readable: Readable(src)}
}

// Collect resolves each record's referenced image names against the source
// roots in order and copies the first match into dest. References that
// resolve nowhere, or to files that do not decode as images, are logged and
// counted as missing; they never fail the pass. The context is checked at
// record boundaries.
func Collect(ctx context.Context, records []table.Record, roots []string, dest string) (*Report, error) {
	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, fmt.Errorf("failed to create destination %s: %w", dest, err)
	}

	report := &Report{}
	copied := make(map[string]bool)
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Records++
		key := rec.Key()
		for _, ref := range rec.ImagePaths {
			base := path.Base(ref)
			asset := Resolve(roots, base)
			if asset.Source == "" {
				report.Missing++
				slog.Warn("Image not found under any source root", "record", rec.ID, "image", base)
				continue
			}
			if !asset.Readable {
				report.Missing++
				slog.Warn("Image file does not decode, skipping", "record", rec.ID, "image", asset.Source)
				continue
			}
			report.Found++
			name := destName(key, base)
			if copied[name] {
				continue
			}
			if err := copyFile(asset.Source, filepath.Join(dest, name)); err != nil {
				slog.Warn("Failed to copy image", "record", rec.ID, "image", asset.Source, "error", err)
				continue
			}
			copied[name] = true
			report.Copied++
		}
	}
	return report, nil
}

// CollectByID copies every image in the source roots whose file name starts
// with a record's identifier key. The photo archive names files after
// inventory numbers, so this recovers images the export never listed.
// Matching is case-insensitive; roots are scanned flat.
func CollectByID(ctx context.Context, records []table.Record, roots []string, dest string) (*Report, error) {
	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, fmt.Errorf("failed to create destination %s: %w", dest, err)
	}

	keys := make([]string, 0, len(records))
	for _, rec := range records {
		if k := strings.ToLower(rec.Key()); k != "" {
			keys = append(keys, k)
		}
	}

	report := &Report{Records: len(records)}
	copied := make(map[string]bool)
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			slog.Warn("Skipping unreadable source root", "root", root, "error", err)
			continue
		}
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			if entry.IsDir() || !IsImageFile(entry.Name()) {
				continue
			}
			if !matchesAny(strings.ToLower(entry.Name()), keys) || copied[entry.Name()] {
				continue
			}
			src := filepath.Join(root, entry.Name())
			if !Readable(src) {
				report.Missing++
				slog.Warn("Image file does not decode, skipping", "image", src)
				continue
			}
			if err := copyFile(src, filepath.Join(dest, entry.Name())); err != nil {
				slog.Warn("Failed to copy image", "image", src, "error", err)
				continue
			}
			copied[entry.Name()] = true
			report.Found++
			report.Copied++
		}
	}
	return report, nil
}

// ImagesFor returns up to max images in dir whose names start with the
// record key, in name order. Matching is case-insensitive. os.ReadDir
// returns entries already sorted by name.
func ImagesFor(dir, key string, max int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory %s: %w", dir, err)
	}
	prefix := strings.ToLower(key)
	if prefix == "" {
		return nil, nil
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}
		if strings.HasPrefix(strings.ToLower(entry.Name()), prefix) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if max > 0 && len(paths) > max {
		paths = paths[:max]
	}
	return paths, nil
}

// IsImageFile reports whether the name carries a supported image extension.
func IsImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// Readable reports whether the file decodes as an actual image. Truncated
// copies and renamed documents fail here.
func Readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	_, _, err = image.DecodeConfig(f)
	return err == nil
}

func resolve(roots []string, name string) string {
	for _, root := range roots {
		candidate := filepath.Join(root, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// destName keeps the source name when it already starts with the record
// key; otherwise the key is prefixed so the copy stays traceable.
func destName(key, base string) string {
	if key == "" || strings.HasPrefix(strings.ToLower(base), strings.ToLower(key)) {
		return base
	}
	return key + "_" + base
}

func matchesAny(name string, keys []string) bool {
	for _, key := range keys {
		if strings.HasPrefix(name, key) {
			return true
		}
	}
	return false
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy to %s: %w", dst, err)
	}
	return out.Close()
}
