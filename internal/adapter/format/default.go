package format

import (
	"os"
	"sync"

	"reelbridge/internal/domain"
)

// ManifestEnv names the environment variable pointing at the command-adapter
// manifest. It is read by this library layer on first registry use, never by
// the worker binary itself.
const ManifestEnv = "REELBRIDGE_ADAPTER_MANIFEST"

// Build assembles a registry holding the built-in adapters in fixed order,
// followed by the command adapters of the manifest at manifestPath (none when
// empty).
func Build(manifestPath string) (*Registry, error) {
	reg := NewRegistry()
	for _, a := range []domain.Adapter{
		NewJSONAdapter(),
		NewDirBundleAdapter(),
		NewZipBundleAdapter(),
	} {
		if err := reg.Register(a); err != nil {
			return nil, err
		}
	}
	if manifestPath == "" {
		return reg, nil
	}
	m, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, domain.WrapOp("registry.build", err)
	}
	for _, spec := range m.Adapters {
		if err := reg.Register(NewCommandAdapter(spec)); err != nil {
			return nil, domain.WrapOp("registry.build", err)
		}
	}
	return reg, nil
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
	defaultErr  error
)

// Default returns the process-wide registry, built exactly once on first use
// from the built-ins plus the ManifestEnv manifest. A build failure is
// captured and returned on every subsequent call.
func Default() (domain.Registry, error) {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = Build(os.Getenv(ManifestEnv))
	})
	if defaultErr != nil {
		return nil, defaultErr
	}
	return defaultReg, nil
}

// LazyDefault returns a registry view over Default that defers initialization
// to the first operation, so a broken manifest surfaces as a per-request
// failure instead of a startup crash.
func LazyDefault() domain.Registry { return lazyDefault{} }

type lazyDefault struct{}

func (lazyDefault) Adapters() ([]domain.Adapter, error) {
	reg, err := Default()
	if err != nil {
		return nil, err
	}
	return reg.Adapters()
}

func (lazyDefault) ByName(name string) (domain.Adapter, error) {
	reg, err := Default()
	if err != nil {
		return nil, err
	}
	return reg.ByName(name)
}

func (lazyDefault) BySuffix(suffix string) (domain.Adapter, error) {
	reg, err := Default()
	if err != nil {
		return nil, err
	}
	return reg.BySuffix(suffix)
}

var _ domain.Registry = lazyDefault{}
