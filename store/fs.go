package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid"
)

const (
	artifactExt = ".cbor"
	metadataExt = ".meta.cbor"
)

// FS is the local filesystem tier. Artifacts live under
// <root>/artifacts/<fingerprint>.cbor with a sibling metadata document.
type FS struct {
	root string
}

// NewFS creates a filesystem tier rooted at the given directory, creating
// it if needed.
func NewFS(root string) (*FS, error) {
	if err := os.MkdirAll(filepath.Join(root, "artifacts"), 0o755); err != nil {
		return nil, fmt.Errorf("store: create cache dir: %w", err)
	}
	return &FS{root: root}, nil
}

func (s *FS) Name() string {
	return "local"
}

// Root returns the cache root directory.
func (s *FS) Root() string {
	return s.root
}

func (s *FS) artifactPath(fingerprint string) string {
	return filepath.Join(s.root, "artifacts", fingerprint+artifactExt)
}

func (s *FS) metadataPath(fingerprint string) string {
	return filepath.Join(s.root, "artifacts", fingerprint+metadataExt)
}

func (s *FS) Has(ctx context.Context, fingerprint string) (bool, error) {
	_, err := os.Stat(s.artifactPath(fingerprint))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (s *FS) Get(ctx context.Context, fingerprint string) (*Artifact, error) {
	value, err := os.ReadFile(s.artifactPath(fingerprint))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: read artifact: %w", err)
	}
	metaBytes, err := os.ReadFile(s.metadataPath(fingerprint))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: read metadata: %w", err)
	}
	meta, err := decodeMetadata(metaBytes)
	if err != nil {
		return nil, err
	}
	return &Artifact{Meta: meta, Value: value}, nil
}

func (s *FS) Put(ctx context.Context, artifact *Artifact) error {
	metaBytes, err := encodeMetadata(artifact.Meta)
	if err != nil {
		return err
	}
	fingerprint := artifact.Meta.Fingerprint
	if err := s.writeAtomic(s.artifactPath(fingerprint), artifact.Value); err != nil {
		return err
	}
	return s.writeAtomic(s.metadataPath(fingerprint), metaBytes)
}

// writeAtomic writes via a temp file in the same directory plus a rename,
// so readers never observe a partial artifact.
func (s *FS) writeAtomic(path string, data []byte) error {
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	tmp := path + ".tmp." + id.String()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("store: commit artifact: %w", err)
	}
	return nil
}

func (s *FS) List(ctx context.Context) ([]Entry, error) {
	dir := filepath.Join(s.root, "artifacts")
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("store: list artifacts: %w", err)
	}
	var entries []Entry
	for _, file := range files {
		name := file.Name()
		if !strings.HasSuffix(name, metadataExt) {
			continue
		}
		metaBytes, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("store: read metadata: %w", err)
		}
		meta, err := decodeMetadata(metaBytes)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Meta:        meta,
			Tier:        s.Name(),
			ArtifactURL: "file://" + s.artifactPath(meta.Fingerprint),
		})
	}
	return entries, nil
}
