// Package impl_fs backs blobstore.Store with the local filesystem, for
// local development and tests (SPEC_FULL.md §1: "a filesystem-backed
// blob store" stands in for the real SDK-backed client). Virtual paths
// map directly onto paths under root.
package impl_fs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/DusanPaal/claim-management/internal/blobstore"
)

// FSStore implements blobstore.Store rooted at a local directory.
type FSStore struct {
	root string
}

// New returns a Store rooted at root, creating it if absent.
func New(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: create root %s: %w", root, err)
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) abs(virtualPath string) string {
	return filepath.Join(s.root, filepath.FromSlash(virtualPath))
}

func (s *FSStore) Upload(ctx context.Context, virtualPath string, data []byte, overwrite bool) error {
	dst := s.abs(virtualPath)
	if !overwrite {
		if _, err := os.Stat(dst); err == nil {
			return fmt.Errorf("blobstore: %s already exists", virtualPath)
		}
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("blobstore: create parent directory: %w", err)
	}
	return os.WriteFile(dst, data, 0o644)
}

func (s *FSStore) List(ctx context.Context, dir, ext, nameRegex string) ([]blobstore.BlobInfo, error) {
	base := s.abs(dir)
	var re *regexp.Regexp
	if nameRegex != "" {
		compiled, err := regexp.Compile(nameRegex)
		if err != nil {
			return nil, fmt.Errorf("blobstore: invalid name regex: %w", err)
		}
		re = compiled
	}

	var out []blobstore.BlobInfo
	err := filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		if ext != "" && !strings.HasSuffix(info.Name(), ext) {
			return nil
		}
		if re != nil && !re.MatchString(info.Name()) {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		out = append(out, blobstore.BlobInfo{Path: filepath.ToSlash(rel), Size: info.Size()})
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("blobstore: list %s: %w", dir, err)
	}
	return out, nil
}

func (s *FSStore) Download(ctx context.Context, virtualPath, localPath string, policy blobstore.DuplicatePolicy) error {
	if _, err := os.Stat(localPath); err == nil {
		switch policy {
		case blobstore.DuplicateRaise:
			return fmt.Errorf("blobstore: destination %s already exists", localPath)
		case blobstore.DuplicateCopy:
			localPath = uniquePath(localPath)
		case blobstore.DuplicateOverwrite:
			// fall through, overwrite below
		default:
			return fmt.Errorf("blobstore: unknown duplicate policy %q", policy)
		}
	}

	src, err := os.Open(s.abs(virtualPath))
	if err != nil {
		return fmt.Errorf("blobstore: open %s: %w", virtualPath, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("blobstore: create local directory: %w", err)
	}
	dst, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("blobstore: create %s: %w", localPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("blobstore: copy %s: %w", virtualPath, err)
	}
	return nil
}

func uniquePath(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s(%d)%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func (s *FSStore) Delete(ctx context.Context, virtualPath string) error {
	if err := os.Remove(s.abs(virtualPath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("blobstore: delete %s: %w", virtualPath, err)
	}
	return nil
}

func (s *FSStore) FetchContent(ctx context.Context, virtualPath string) ([]byte, error) {
	data, err := os.ReadFile(s.abs(virtualPath))
	if err != nil {
		return nil, fmt.Errorf("blobstore: read %s: %w", virtualPath, err)
	}
	if strings.HasSuffix(virtualPath, ".json") && !json.Valid(data) {
		return nil, fmt.Errorf("blobstore: %s is not valid JSON", virtualPath)
	}
	return data, nil
}

var _ blobstore.Store = (*FSStore)(nil)
