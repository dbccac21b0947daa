package format

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"reelbridge/internal/domain"
)

// BundleVersion is written to version.txt inside every bundle.
const BundleVersion = "1.0.0"

const (
	bundleContentName = "content.reel"
	bundleVersionName = "version.txt"
	bundleMediaDir    = "media"
)

// MediaPolicy controls how bundle writers treat the media paths named in the
// write args.
type MediaPolicy string

const (
	// MediaPolicyError fails the write when any media path is not an
	// existing regular file. The default.
	MediaPolicyError MediaPolicy = "error"
	// MediaPolicySkip silently drops media paths that are not regular files.
	MediaPolicySkip MediaPolicy = "skip"
	// MediaPolicyOmit writes the bundle without any media.
	MediaPolicyOmit MediaPolicy = "omit"
)

func parseMediaPolicy(args map[string]any) (MediaPolicy, error) {
	raw, ok := args["media_policy"]
	if !ok {
		return MediaPolicyError, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", domain.NewDomainError("bundle", domain.ErrInvalidParams, `"media_policy" must be a string`)
	}
	switch p := MediaPolicy(s); p {
	case MediaPolicyError, MediaPolicySkip, MediaPolicyOmit:
		return p, nil
	default:
		return "", domain.NewDomainError("bundle", domain.ErrInvalidParams,
			fmt.Sprintf("unknown media_policy %q (want error, skip, or omit)", s))
	}
}

func parseMediaPaths(args map[string]any) ([]string, error) {
	raw, ok := args["media"]
	if !ok {
		return nil, nil
	}
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		paths := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, domain.NewDomainError("bundle", domain.ErrInvalidParams, `"media" must be a list of strings`)
			}
			paths = append(paths, s)
		}
		return paths, nil
	default:
		return nil, domain.NewDomainError("bundle", domain.ErrInvalidParams, `"media" must be a list of strings`)
	}
}

// collectMedia resolves the media set for a bundle write: parse the args,
// apply the policy, and verify basename uniqueness. The returned paths are
// the files to copy under media/.
func collectMedia(args map[string]any) ([]string, error) {
	policy, err := parseMediaPolicy(args)
	if err != nil {
		return nil, err
	}
	if policy == MediaPolicyOmit {
		return nil, nil
	}
	paths, err := parseMediaPaths(args)
	if err != nil {
		return nil, err
	}

	kept := make([]string, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil || !fi.Mode().IsRegular() {
			if policy == MediaPolicySkip {
				continue
			}
			return nil, domain.NewDomainError("bundle", domain.ErrBundleInvalid,
				fmt.Sprintf("media %q is not an existing file", p))
		}
		base := filepath.Base(p)
		if prev, dup := seen[base]; dup {
			return nil, domain.NewDomainError("bundle", domain.ErrBundleInvalid,
				fmt.Sprintf("duplicate media basename %q (%s and %s)", base, prev, p))
		}
		seen[base] = p
		kept = append(kept, p)
	}
	return kept, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
