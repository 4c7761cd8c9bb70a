package pathmap

import (
	"os"
	"path/filepath"
	"strings"
)

// Rule rewrites one recorded-path prefix to a local replacement.
type Rule struct {
	Prefix      string
	Replacement string
}

// DefaultRules covers the common mount prefixes a media library records when
// it runs in a container or on a NAS, all rewritten onto the local base path.
// These are defaults, not assumptions: deployments with other layouts supply
// their own rules.
func DefaultRules(basePath string) []Rule {
	prefixes := []string{
		"/data/media",
		"/data",
		"/media",
		"/mnt/user/media",
		"/mnt/media",
		"/volume1/media",
	}
	rules := make([]Rule, 0, len(prefixes))
	for _, p := range prefixes {
		rules = append(rules, Rule{Prefix: p, Replacement: basePath})
	}
	return rules
}

// ParseRules parses a comma-separated list of "prefix=>replacement" pairs.
// Malformed pairs are skipped.
func ParseRules(spec string) []Rule {
	var rules []Rule
	for _, pair := range strings.Split(spec, ",") {
		prefix, replacement, found := strings.Cut(strings.TrimSpace(pair), "=>")
		if !found || prefix == "" {
			continue
		}
		rules = append(rules, Rule{
			Prefix:      strings.TrimSpace(prefix),
			Replacement: strings.TrimSpace(replacement),
		})
	}
	return rules
}

// Resolver maps library-recorded file paths to paths that exist locally.
type Resolver struct {
	rules []Rule
	stat  func(string) (os.FileInfo, error)
}

func NewResolver(rules []Rule) *Resolver {
	return &Resolver{rules: rules, stat: os.Stat}
}

// Resolve tries the recorded path verbatim, then every rule-generated
// candidate in order, and returns the first path that exists. The second
// return is false when no candidate exists; callers treat that as "media
// file unavailable", not an error.
func (r *Resolver) Resolve(recorded string) (string, bool) {
	if recorded == "" {
		return "", false
	}

	candidates := r.candidates(recorded)
	for _, candidate := range candidates {
		if info, err := r.stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// candidates generates the ordered, deduplicated rewrite list. Recorded paths
// may use either separator convention; they are normalized to slashes before
// prefix matching and localized afterwards.
func (r *Resolver) candidates(recorded string) []string {
	normalized := strings.ReplaceAll(recorded, "\\", "/")

	ordered := []string{recorded}
	if normalized != recorded {
		ordered = append(ordered, filepath.FromSlash(normalized))
	}
	for _, rule := range r.rules {
		prefix := strings.ReplaceAll(rule.Prefix, "\\", "/")
		if !strings.HasPrefix(normalized, prefix) {
			continue
		}
		rest := strings.TrimPrefix(normalized, prefix)
		rest = strings.TrimPrefix(rest, "/")
		ordered = append(ordered, filepath.Join(filepath.FromSlash(rule.Replacement), filepath.FromSlash(rest)))
	}

	seen := make(map[string]bool, len(ordered))
	deduped := ordered[:0]
	for _, c := range ordered {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		deduped = append(deduped, c)
	}
	return deduped
}
