package format

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"reelbridge/internal/domain"
)

// DirBundleAdapter reads and writes reeld bundles: a directory holding
// version.txt, content.reel, and the referenced media files under media/.
type DirBundleAdapter struct{}

// NewDirBundleAdapter creates the directory bundle adapter.
func NewDirBundleAdapter() *DirBundleAdapter { return &DirBundleAdapter{} }

func (a *DirBundleAdapter) Info() domain.AdapterInfo {
	return domain.AdapterInfo{
		Name:     "reeld",
		Suffixes: []string{"reeld"},
	}
}

// ReadFile loads content.reel from the bundle directory. Media files are left
// in place; the document references them where they are.
func (a *DirBundleAdapter) ReadFile(ctx context.Context, path string, args map[string]any) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", domain.NewDomainError("read_from_file", domain.ErrBundleInvalid, err.Error())
	}
	if !fi.IsDir() {
		return "", domain.NewDomainError("read_from_file", domain.ErrBundleInvalid,
			fmt.Sprintf("%s is not a bundle directory", path))
	}
	raw, err := os.ReadFile(filepath.Join(path, bundleContentName))
	if err != nil {
		return "", domain.NewDomainError("read_from_file", domain.ErrBundleInvalid,
			fmt.Sprintf("missing %s: %v", bundleContentName, err))
	}
	return domain.CompactDocument(string(raw))
}

// WriteFile creates the bundle directory at path. The target must not already
// exist; the document and media set are checked before anything is created so
// a failed write leaves no partial bundle.
func (a *DirBundleAdapter) WriteFile(ctx context.Context, doc, path string, args map[string]any) error {
	content, err := domain.IndentDocument(doc)
	if err != nil {
		return err
	}
	media, err := collectMedia(args)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return domain.NewDomainError("write_to_file", domain.ErrWriteFailed,
			fmt.Sprintf("%s already exists", path))
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return domain.NewDomainError("write_to_file", domain.ErrWriteFailed, err.Error())
	}
	if err := os.WriteFile(filepath.Join(path, bundleVersionName), []byte(BundleVersion), 0o644); err != nil {
		return domain.NewDomainError("write_to_file", domain.ErrWriteFailed, err.Error())
	}
	if err := os.WriteFile(filepath.Join(path, bundleContentName), []byte(content+"\n"), 0o644); err != nil {
		return domain.NewDomainError("write_to_file", domain.ErrWriteFailed, err.Error())
	}

	if len(media) == 0 {
		return nil
	}
	mediaDir := filepath.Join(path, bundleMediaDir)
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return domain.NewDomainError("write_to_file", domain.ErrWriteFailed, err.Error())
	}
	for _, src := range media {
		dst := filepath.Join(mediaDir, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			return domain.NewDomainError("write_to_file", domain.ErrWriteFailed,
				fmt.Sprintf("copy media %s: %v", src, err))
		}
	}
	return nil
}

var (
	_ domain.Adapter    = (*DirBundleAdapter)(nil)
	_ domain.FileReader = (*DirBundleAdapter)(nil)
	_ domain.FileWriter = (*DirBundleAdapter)(nil)
)
