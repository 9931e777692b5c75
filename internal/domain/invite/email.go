package invite

import (
	"regexp"
	"strings"
)

// providerAliasPattern recognizes webmail addresses whose local part ignores dots.
var providerAliasPattern = regexp.MustCompile(`^([\w.+-]+)(@gmail\.com|@googlemail\.com)$`)

// EmailsEquivalent reports whether a and b denote the same invitable identity.
//
// The baseline rule is a case-insensitive exact match. With canonicalizeProviderAliases
// set and a recognized as a webmail address, b matches when it equals a's dot-free
// local part with optional dots between characters, on a's domain.
func EmailsEquivalent(a, b string, canonicalizeProviderAliases bool) bool {
	if !canonicalizeProviderAliases {
		return normalizeEmail(a) == normalizeEmail(b)
	}
	return newEmailMatcher(a).matches(b, true)
}

// emailMatcher holds an address with its alias pattern compiled once,
// so it can be compared against many candidates.
type emailMatcher struct {
	email string
	alias *regexp.Regexp
}

func newEmailMatcher(email string) emailMatcher {
	m := emailMatcher{email: normalizeEmail(email)}
	if sub := providerAliasPattern.FindStringSubmatch(m.email); sub != nil {
		m.alias = aliasPattern(sub[1], sub[2])
	}
	return m
}

// matches applies EmailsEquivalent with m as the first argument.
func (m emailMatcher) matches(other string, canonicalize bool) bool {
	other = normalizeEmail(other)
	if canonicalize && m.alias != nil {
		return m.alias.MatchString(other)
	}
	return m.email == other
}

// equivalent checks both directions, since the alias rule keys off the first address.
func (m emailMatcher) equivalent(other emailMatcher, canonicalize bool) bool {
	return m.matches(other.email, canonicalize) || other.matches(m.email, canonicalize)
}

// aliasPattern builds an anchored pattern matching local (dots ignored) on domain.
func aliasPattern(local, domain string) *regexp.Regexp {
	stripped := strings.ReplaceAll(local, ".", "")

	chars := make([]string, 0, len(stripped))
	for _, r := range stripped {
		chars = append(chars, regexp.QuoteMeta(string(r)))
	}

	return regexp.MustCompile("^" + strings.Join(chars, `\.?`) + regexp.QuoteMeta(domain) + "$")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
