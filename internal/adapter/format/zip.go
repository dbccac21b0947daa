package format

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"reelbridge/internal/domain"
)

// ZipBundleAdapter reads and writes reelz bundles: a zip archive with the
// same layout as a reeld directory. version.txt and content.reel are
// deflated; media entries are stored uncompressed since media formats are
// already compressed.
type ZipBundleAdapter struct{}

// NewZipBundleAdapter creates the zip bundle adapter.
func NewZipBundleAdapter() *ZipBundleAdapter { return &ZipBundleAdapter{} }

func (a *ZipBundleAdapter) Info() domain.AdapterInfo {
	return domain.AdapterInfo{
		Name:     "reelz",
		Suffixes: []string{"reelz"},
	}
}

// ReadFile loads content.reel from the archive. With an "extract_dir" arg the
// whole bundle is unpacked there (the directory is created if absent) and the
// content is read from the extracted copy.
func (a *ZipBundleAdapter) ReadFile(ctx context.Context, path string, args map[string]any) (string, error) {
	if raw, ok := args["extract_dir"]; ok {
		dir, ok := raw.(string)
		if !ok {
			return "", domain.NewDomainError("read_from_file", domain.ErrInvalidParams, `"extract_dir" must be a string`)
		}
		return a.readWithExtraction(path, dir)
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return "", domain.NewDomainError("read_from_file", domain.ErrBundleInvalid, err.Error())
	}
	defer r.Close()

	raw, err := readZipEntry(&r.Reader, bundleContentName)
	if err != nil {
		return "", err
	}
	return domain.CompactDocument(string(raw))
}

func (a *ZipBundleAdapter) readWithExtraction(path, dir string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", domain.NewDomainError("read_from_file", domain.ErrBundleInvalid, err.Error())
	}
	defer r.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", domain.NewDomainError("read_from_file", domain.ErrReadFailed, err.Error())
	}

	var content []byte
	for _, f := range r.File {
		dst, err := sanitizeExtractPath(dir, f.Name)
		if err != nil {
			return "", err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dst, 0o755); err != nil {
				return "", domain.NewDomainError("read_from_file", domain.ErrReadFailed, err.Error())
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return "", domain.NewDomainError("read_from_file", domain.ErrReadFailed, err.Error())
		}
		if err := extractZipFile(f, dst); err != nil {
			return "", err
		}
		if f.Name == bundleContentName {
			content, err = os.ReadFile(dst)
			if err != nil {
				return "", domain.NewDomainError("read_from_file", domain.ErrReadFailed, err.Error())
			}
		}
	}
	if content == nil {
		return "", domain.NewDomainError("read_from_file", domain.ErrBundleInvalid,
			fmt.Sprintf("missing %s", bundleContentName))
	}
	return domain.CompactDocument(string(content))
}

// WriteFile creates the bundle archive at path. The document and media set
// are checked before the archive is created.
func (a *ZipBundleAdapter) WriteFile(ctx context.Context, doc, path string, args map[string]any) error {
	content, err := domain.IndentDocument(doc)
	if err != nil {
		return err
	}
	media, err := collectMedia(args)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return domain.NewDomainError("write_to_file", domain.ErrWriteFailed, err.Error())
	}
	defer f.Close()

	w := zip.NewWriter(f)
	if err := writeZipBundle(w, content, media); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return domain.NewDomainError("write_to_file", domain.ErrWriteFailed, err.Error())
	}
	return f.Close()
}

func writeZipBundle(w *zip.Writer, content string, media []string) error {
	vw, err := w.Create(bundleVersionName)
	if err != nil {
		return domain.NewDomainError("write_to_file", domain.ErrWriteFailed, err.Error())
	}
	if _, err := vw.Write([]byte(BundleVersion)); err != nil {
		return domain.NewDomainError("write_to_file", domain.ErrWriteFailed, err.Error())
	}

	cw, err := w.Create(bundleContentName)
	if err != nil {
		return domain.NewDomainError("write_to_file", domain.ErrWriteFailed, err.Error())
	}
	if _, err := cw.Write([]byte(content)); err != nil {
		return domain.NewDomainError("write_to_file", domain.ErrWriteFailed, err.Error())
	}

	for _, src := range media {
		// Forward slashes, stored uncompressed.
		header := &zip.FileHeader{
			Name:   bundleMediaDir + "/" + filepath.Base(src),
			Method: zip.Store,
		}
		mw, err := w.CreateHeader(header)
		if err != nil {
			return domain.NewDomainError("write_to_file", domain.ErrWriteFailed, err.Error())
		}
		mf, err := os.Open(src)
		if err != nil {
			return domain.NewDomainError("write_to_file", domain.ErrWriteFailed,
				fmt.Sprintf("open media %s: %v", src, err))
		}
		_, copyErr := io.Copy(mw, mf)
		mf.Close()
		if copyErr != nil {
			return domain.NewDomainError("write_to_file", domain.ErrWriteFailed,
				fmt.Sprintf("copy media %s: %v", src, copyErr))
		}
	}
	return nil
}

func readZipEntry(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, domain.NewDomainError("read_from_file", domain.ErrBundleInvalid, err.Error())
		}
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		if err != nil {
			return nil, domain.NewDomainError("read_from_file", domain.ErrBundleInvalid, err.Error())
		}
		return raw, nil
	}
	return nil, domain.NewDomainError("read_from_file", domain.ErrBundleInvalid,
		fmt.Sprintf("missing %s", name))
}

func extractZipFile(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return domain.NewDomainError("read_from_file", domain.ErrBundleInvalid, err.Error())
	}
	defer rc.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return domain.NewDomainError("read_from_file", domain.ErrReadFailed, err.Error())
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return domain.NewDomainError("read_from_file", domain.ErrReadFailed, err.Error())
	}
	if err := out.Close(); err != nil {
		return domain.NewDomainError("read_from_file", domain.ErrReadFailed, err.Error())
	}
	return nil
}

// sanitizeExtractPath rejects entry names that would escape the extraction
// directory.
func sanitizeExtractPath(dir, name string) (string, error) {
	dst := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, dst)
	if err != nil || rel == ".." || len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator) {
		return "", domain.NewDomainError("read_from_file", domain.ErrBundleInvalid,
			fmt.Sprintf("entry %q escapes extraction directory", name))
	}
	return dst, nil
}

var (
	_ domain.Adapter    = (*ZipBundleAdapter)(nil)
	_ domain.FileReader = (*ZipBundleAdapter)(nil)
	_ domain.FileWriter = (*ZipBundleAdapter)(nil)
)
