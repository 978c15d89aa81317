// Package detector implements the scam classifier: ordered signal checks
// over a message's text, links, embeds, and recent-message window, short-
// circuiting on the first positive.
package detector

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/dotfriends/asca/internal/core"
	"github.com/dotfriends/asca/internal/links"
	"github.com/dotfriends/asca/internal/textnorm"
)

// Blocklist is the read side of the shared blocklist snapshot.
type Blocklist interface {
	Contains(domain string) bool
}

// maliciousExtensions are dangerous download extensions looked for in URL
// path and query.
var maliciousExtensions = []string{".exe", ".msi", ".zip", ".rar"}

// maliciousTerms are known scam phrases, matched against whitespace-stripped
// lowercase text.
var maliciousTerms = buildStrippedSet(
	"nitro",
	"password:",
	"who is first?",
	"who will catch this gift?",
	"take it guys",
	"i stopped playing cs:go",
	"can you check out the game i created today",
	"test my first game",
	"i made a game can you test play?",
	"i have coded a new game",
	"farm cryptocurrency",
	"from the crypto market",
)

// scammerPhoneNumbers are numbers known to be used in support scams.
var scammerPhoneNumbers = buildStrippedSet(
	"+1 (256) 482-1848",
	"+1 (518) 952-5213",
	"+1 (531) 254-0859",
	"+1 (559) 666‑3967",
	"+1 (757) 861‑3217",
)

// Classifier evaluates messages against the ordered scam checks. It never
// mutates tenant state.
type Classifier struct {
	brand          string
	threshold      float64
	burstThreshold int
	burstWindow    time.Duration
	blocklist      Blocklist
	reputation     core.ReputationService
	reports        core.ReportSink
	logger         *zap.Logger
}

// NewClassifier creates a new Classifier.
func NewClassifier(
	brand string,
	threshold float64,
	burstThreshold int,
	burstWindow time.Duration,
	blocklist Blocklist,
	reputation core.ReputationService,
	reports core.ReportSink,
	logger *zap.Logger,
) *Classifier {
	return &Classifier{
		brand:          strings.ToLower(brand),
		threshold:      threshold,
		burstThreshold: burstThreshold,
		burstWindow:    burstWindow,
		blocklist:      blocklist,
		reputation:     reputation,
		reports:        reports,
		logger:         logger,
	}
}

// Classify runs the ordered checks and returns the verdict. Checks are
// ordered cheapest and most certain first, and the first positive wins.
func (c *Classifier) Classify(ctx context.Context, in *core.ClassifyInput) core.Verdict {
	domains := c.suspectDomains(in.URLs)
	evidence := strings.Join(domains, "\n")

	// 1. Exact blocklist membership. Already-known domains are not
	// re-reported.
	for _, domain := range domains {
		if c.blocklist.Contains(domain) {
			return c.scam(core.ReasonBlocklist, evidence)
		}
	}

	// 2. Typosquat similarity, exclusive bounds: exact equality is the real
	// domain and wildly different strings are unrelated.
	for _, domain := range domains {
		ratio := Similarity(c.brand, registrableName(domain))
		if ratio > c.threshold && ratio < 1 {
			c.logger.Debug("Typosquat domain",
				zap.String("domain", domain),
				zap.Float64("ratio", ratio))
			c.report(evidence)
			return c.scam(core.ReasonTyposquat, evidence)
		}
	}

	// 3. Malicious file extension. Official domains are scanned too.
	for _, u := range in.URLs {
		if hasMaliciousExtension(u) {
			c.report(evidence)
			return c.scam(core.ReasonFileExtension, evidence)
		}
	}

	stripped := c.strippedText(in)

	if len(domains) > 0 {
		// 4. External reputation lookup. A failed or unavailable lookup is
		// treated as "not malicious".
		if c.reputation != nil && c.reputation.Available() {
			results, err := c.reputation.Lookup(ctx, domains)
			if err != nil {
				c.logger.Debug("Reputation lookup failed", zap.Error(err))
			} else {
				for _, malicious := range results {
					if malicious {
						return c.scam(core.ReasonReputation, evidence)
					}
				}
			}
		}

		// 5. Malicious phrase match.
		if containsAny(stripped, maliciousTerms) {
			c.report(evidence)
			return c.scam(core.ReasonMaliciousTerm, evidence)
		}

		// 6. Spoofed embed provider.
		for _, embed := range in.Message.Embeds {
			if embed.Provider == "" {
				continue
			}
			folded := strings.ToLower(textnorm.FoldHomoglyphs(embed.Provider))
			if folded == c.brand {
				c.report(evidence)
				return c.scam(core.ReasonSpoofedEmbed, evidence)
			}
		}
	}

	// 7. Known scammer phone number, URL or not.
	if containsAny(stripped, scammerPhoneNumbers) {
		c.report(evidence)
		return c.scam(core.ReasonPhoneNumber, evidence)
	}

	// 8. Burst detection over the recent-message window.
	if len(core.RelatedMessages(in.Message, in.Recent, c.burstWindow)) > c.burstThreshold {
		c.report(evidence)
		return c.scam(core.ReasonBurst, evidence)
	}

	return core.NotScam
}

func (c *Classifier) scam(reason core.VerdictReason, evidence string) core.Verdict {
	return core.Verdict{Scam: true, Reason: reason, Evidence: evidence}
}

func (c *Classifier) report(evidence string) {
	if c.reports != nil {
		c.reports.Record(evidence)
	}
}

// suspectDomains returns the sorted, deduplicated non-official domains of
// the candidate URLs.
func (c *Classifier) suspectDomains(urls []string) []string {
	seen := make(map[string]struct{})
	var domains []string
	for _, u := range urls {
		host := links.Host(u)
		if host == "" || links.IsOfficial(host) {
			continue
		}
		if _, ok := seen[host]; ok {
			continue
		}
		seen[host] = struct{}{}
		domains = append(domains, host)
	}
	sort.Strings(domains)
	return domains
}

// strippedText lowercases the normalized text, removes the candidate URLs,
// and strips all whitespace, matching how the term and phone sets are
// stored.
func (c *Classifier) strippedText(in *core.ClassifyInput) string {
	text := strings.ToLower(in.NormalizedText)
	for _, u := range in.URLs {
		text = strings.ReplaceAll(text, strings.ToLower(u), "")
	}
	return stripWhitespace(text)
}

// Similarity returns the Ratcliff/Obershelp similarity ratio of two strings,
// compatible with Python's difflib.SequenceMatcher.
func Similarity(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

// registrableName extracts the registrable name of a domain without its
// public suffix, e.g. "discocd" from "mail.discocd.gift".
func registrableName(domain string) string {
	registrable, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		registrable = domain
	}
	suffix, _ := publicsuffix.PublicSuffix(registrable)
	if suffix != "" && len(registrable) > len(suffix)+1 {
		return strings.TrimSuffix(registrable, "."+suffix)
	}
	return registrable
}

func hasMaliciousExtension(rawURL string) bool {
	target := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		target = u.Path + u.RawQuery
	}
	for _, ext := range maliciousExtensions {
		if strings.Contains(target, ext) {
			return true
		}
	}
	return false
}

func containsAny(text string, set []string) bool {
	for _, entry := range set {
		if strings.Contains(text, entry) {
			return true
		}
	}
	return false
}

func stripWhitespace(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
}

func buildStrippedSet(entries ...string) []string {
	stripped := make([]string, len(entries))
	for i, entry := range entries {
		stripped[i] = stripWhitespace(entry)
	}
	return stripped
}
