package domain

import "context"

// Feature names an adapter capability, matching the operation that uses it.
type Feature string

const (
	FeatureReadFromFile   Feature = "read_from_file"
	FeatureReadFromString Feature = "read_from_string"
	FeatureWriteToFile    Feature = "write_to_file"
	FeatureWriteToString  Feature = "write_to_string"
)

// Features summarizes an adapter's read/write support as reported by discover:
// Read is true when the adapter reads from a file path or from an in-memory
// string, Write analogously for writing.
type Features struct {
	Read  bool `json:"read"`
	Write bool `json:"write"`
}

// AdapterInfo describes one registered format adapter.
type AdapterInfo struct {
	Name     string   `json:"name"`
	Suffixes []string `json:"suffixes"` // dot-less, lowercase; empty when none declared
	Features Features `json:"features"`
}

// Adapter is the interface for any format plugin. Concrete adapters opt into
// the operations they support by additionally implementing the capability
// interfaces below; an adapter with none of them is visible in discover but
// usable by no operation.
type Adapter interface {
	// Info returns the adapter's name and declared suffixes.
	Info() AdapterInfo
}

// FileReader loads a document from a file path and returns it as canonical
// interchange JSON.
type FileReader interface {
	ReadFile(ctx context.Context, path string, args map[string]any) (string, error)
}

// StringReader parses an in-memory document and returns it as canonical
// interchange JSON.
type StringReader interface {
	ReadString(ctx context.Context, data string, args map[string]any) (string, error)
}

// FileWriter writes a canonical interchange JSON document to a file path in
// the adapter's format.
type FileWriter interface {
	WriteFile(ctx context.Context, doc, path string, args map[string]any) error
}

// StringWriter serializes a canonical interchange JSON document to a string in
// the adapter's format.
type StringWriter interface {
	WriteString(ctx context.Context, doc string, args map[string]any) (string, error)
}

// Registry is the capability-query surface over the set of registered
// adapters. Implementations preserve registration order in Adapters.
type Registry interface {
	// Adapters returns every registered adapter in registration order.
	Adapters() ([]Adapter, error)
	// ByName returns the adapter registered under the given name.
	ByName(name string) (Adapter, error)
	// BySuffix returns the adapter claiming the given file suffix (dot-less,
	// case-insensitive).
	BySuffix(suffix string) (Adapter, error)
}

// FeatureDeclarer lets an adapter report its features itself instead of
// having them inferred from its Go type. Adapters whose capabilities depend
// on runtime configuration (manifest-declared command adapters) implement it.
type FeatureDeclarer interface {
	DeclaresFeature(f Feature) bool
}

// HasFeature reports whether the adapter supports the named feature: the
// adapter's own declaration when it provides one, otherwise the capability
// interface it implements. Unknown feature names are simply unsupported.
func HasFeature(a Adapter, f Feature) bool {
	if d, ok := a.(FeatureDeclarer); ok {
		return d.DeclaresFeature(f)
	}
	switch f {
	case FeatureReadFromFile:
		_, ok := a.(FileReader)
		return ok
	case FeatureReadFromString:
		_, ok := a.(StringReader)
		return ok
	case FeatureWriteToFile:
		_, ok := a.(FileWriter)
		return ok
	case FeatureWriteToString:
		_, ok := a.(StringWriter)
		return ok
	}
	return false
}

// InfoWithFeatures fills the Features flags of an adapter's info from its
// implemented capabilities: Read when it reads from file or string, Write
// analogously.
func InfoWithFeatures(a Adapter) AdapterInfo {
	info := a.Info()
	if info.Suffixes == nil {
		info.Suffixes = []string{}
	}
	info.Features = Features{
		Read:  HasFeature(a, FeatureReadFromFile) || HasFeature(a, FeatureReadFromString),
		Write: HasFeature(a, FeatureWriteToFile) || HasFeature(a, FeatureWriteToString),
	}
	return info
}
