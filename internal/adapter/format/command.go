package format

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"reelbridge/internal/domain"
)

// pathPlaceholder is replaced in command argv with the operation's file path.
const pathPlaceholder = "{path}"

// stderrTailLimit bounds how much captured stderr is folded into a failure.
const stderrTailLimit = 2048

// CommandAdapter runs external converter programs declared in a manifest.
// Reading executes the read command against the input path and takes its
// stdout as the canonical document; writing feeds the canonical document to
// the write command's stdin, which produces the target file itself. Only the
// file capabilities exist: there is no process-to-process string form.
type CommandAdapter struct {
	name     string
	suffixes []string
	read     *ManifestCommand
	write    *ManifestCommand
}

// NewCommandAdapter creates an adapter from one validated manifest entry.
func NewCommandAdapter(spec ManifestAdapter) *CommandAdapter {
	return &CommandAdapter{
		name:     spec.Name,
		suffixes: spec.Suffixes,
		read:     spec.Read,
		write:    spec.Write,
	}
}

func (a *CommandAdapter) Info() domain.AdapterInfo {
	return domain.AdapterInfo{
		Name:     a.name,
		Suffixes: a.suffixes,
	}
}

// DeclaresFeature reports the capabilities actually declared in the manifest
// entry, not the method set of this type.
func (a *CommandAdapter) DeclaresFeature(f domain.Feature) bool {
	switch f {
	case domain.FeatureReadFromFile:
		return a.read != nil
	case domain.FeatureWriteToFile:
		return a.write != nil
	}
	return false
}

func (a *CommandAdapter) ReadFile(ctx context.Context, path string, args map[string]any) (string, error) {
	if a.read == nil {
		return "", domain.NewDomainError("read_from_file", domain.ErrFeatureUnsupported, a.name)
	}
	stdout, err := a.run(ctx, a.read, path, nil)
	if err != nil {
		return "", err
	}
	// The converter's stdout must be a canonical document.
	return domain.CompactDocument(string(stdout))
}

func (a *CommandAdapter) WriteFile(ctx context.Context, doc, path string, args map[string]any) error {
	if a.write == nil {
		return domain.NewDomainError("write_to_file", domain.ErrFeatureUnsupported, a.name)
	}
	compact, err := domain.CompactDocument(doc)
	if err != nil {
		return err
	}
	_, err = a.run(ctx, a.write, path, strings.NewReader(compact))
	return err
}

func (a *CommandAdapter) run(ctx context.Context, mc *ManifestCommand, path string, stdin *strings.Reader) ([]byte, error) {
	argv := make([]string, len(mc.Command))
	for i, arg := range mc.Command {
		argv[i] = strings.ReplaceAll(arg, pathPlaceholder, path)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if len(mc.Env) > 0 {
		cmd.Env = append(os.Environ(), mc.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = stdin
	}

	if err := cmd.Run(); err != nil {
		detail := fmt.Sprintf("%s: %v", argv[0], err)
		if tail := stderrTail(stderr.Bytes()); tail != "" {
			detail += ": " + tail
		}
		return nil, domain.NewDomainError(a.name, domain.ErrCommandFailed, detail)
	}
	return stdout.Bytes(), nil
}

func stderrTail(b []byte) string {
	if len(b) > stderrTailLimit {
		b = b[len(b)-stderrTailLimit:]
	}
	return strings.TrimSpace(string(b))
}

var (
	_ domain.Adapter         = (*CommandAdapter)(nil)
	_ domain.FeatureDeclarer = (*CommandAdapter)(nil)
	_ domain.FileReader      = (*CommandAdapter)(nil)
	_ domain.FileWriter      = (*CommandAdapter)(nil)
)
