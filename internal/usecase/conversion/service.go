// Package conversion exposes the format capabilities the protocol handlers
// call: enumerate adapters, read documents in, write documents out. It is the
// only layer that touches the adapter registry.
package conversion

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"reelbridge/internal/domain"
)

// Service resolves adapters by name or file suffix and invokes the requested
// capability. Adapter-internal failures propagate unmodified; the service
// adds only resolution and capability errors of its own.
type Service struct {
	registry domain.Registry
	logger   *slog.Logger
}

// NewService creates a conversion service over the given registry.
func NewService(registry domain.Registry, logger *slog.Logger) *Service {
	return &Service{registry: registry, logger: logger}
}

// Adapters returns the discover listing: every registered adapter, in
// registration order, with its features filled in.
func (s *Service) Adapters(ctx context.Context) ([]domain.AdapterInfo, error) {
	adapters, err := s.registry.Adapters()
	if err != nil {
		return nil, err
	}
	infos := make([]domain.AdapterInfo, 0, len(adapters))
	for _, a := range adapters {
		infos = append(infos, domain.InfoWithFeatures(a))
	}
	return infos, nil
}

// ReadFile loads the file through the named adapter, auto-detected from the
// path suffix when name is empty, and returns the canonical document.
func (s *Service) ReadFile(ctx context.Context, path, name string, args map[string]any) (string, error) {
	const op = "read_from_file"
	a, err := s.resolve(op, name, path)
	if err != nil {
		return "", err
	}
	if !domain.HasFeature(a, domain.FeatureReadFromFile) {
		return "", unsupported(op, a, domain.FeatureReadFromFile)
	}
	fr, ok := a.(domain.FileReader)
	if !ok {
		return "", unsupported(op, a, domain.FeatureReadFromFile)
	}
	s.logger.Debug("reading file", "adapter", a.Info().Name, "path", path)
	return fr.ReadFile(ctx, path, args)
}

// ReadString parses an in-memory document through the named adapter and
// returns the canonical document.
func (s *Service) ReadString(ctx context.Context, data, name string, args map[string]any) (string, error) {
	const op = "read_from_string"
	a, err := s.registry.ByName(name)
	if err != nil {
		return "", err
	}
	if !domain.HasFeature(a, domain.FeatureReadFromString) {
		return "", unsupported(op, a, domain.FeatureReadFromString)
	}
	sr, ok := a.(domain.StringReader)
	if !ok {
		return "", unsupported(op, a, domain.FeatureReadFromString)
	}
	s.logger.Debug("reading string", "adapter", a.Info().Name, "bytes", len(data))
	return sr.ReadString(ctx, data, args)
}

// WriteFile validates data as a canonical document and writes it to path
// through the named adapter, auto-detected from the path suffix when name is
// empty.
func (s *Service) WriteFile(ctx context.Context, data, path, name string, args map[string]any) error {
	const op = "write_to_file"
	if err := domain.ValidateDocument(data); err != nil {
		return err
	}
	a, err := s.resolve(op, name, path)
	if err != nil {
		return err
	}
	if !domain.HasFeature(a, domain.FeatureWriteToFile) {
		return unsupported(op, a, domain.FeatureWriteToFile)
	}
	fw, ok := a.(domain.FileWriter)
	if !ok {
		return unsupported(op, a, domain.FeatureWriteToFile)
	}
	s.logger.Debug("writing file", "adapter", a.Info().Name, "path", path)
	return fw.WriteFile(ctx, data, path, args)
}

// WriteString validates data as a canonical document and serializes it
// through the named adapter.
func (s *Service) WriteString(ctx context.Context, data, name string, args map[string]any) (string, error) {
	const op = "write_to_string"
	if err := domain.ValidateDocument(data); err != nil {
		return "", err
	}
	a, err := s.registry.ByName(name)
	if err != nil {
		return "", err
	}
	if !domain.HasFeature(a, domain.FeatureWriteToString) {
		return "", unsupported(op, a, domain.FeatureWriteToString)
	}
	sw, ok := a.(domain.StringWriter)
	if !ok {
		return "", unsupported(op, a, domain.FeatureWriteToString)
	}
	s.logger.Debug("writing string", "adapter", a.Info().Name)
	return sw.WriteString(ctx, data, args)
}

// resolve picks the adapter by explicit name, or by the path's suffix when no
// name was given.
func (s *Service) resolve(op, name, path string) (domain.Adapter, error) {
	if name != "" {
		return s.registry.ByName(name)
	}
	suffix := strings.TrimPrefix(filepath.Ext(path), ".")
	if suffix == "" {
		return nil, domain.NewDomainError(op, domain.ErrAdapterNotFound,
			fmt.Sprintf("cannot detect adapter: %q has no suffix", path))
	}
	return s.registry.BySuffix(suffix)
}

func unsupported(op string, a domain.Adapter, f domain.Feature) error {
	return domain.NewDomainError(op, domain.ErrFeatureUnsupported,
		fmt.Sprintf("adapter %q does not support %s", a.Info().Name, f))
}
