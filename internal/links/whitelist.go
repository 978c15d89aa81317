package links

import (
	"go.uber.org/zap"
)

// WhitelistChecker provides functionality to check if extracted URLs match a
// tenant's whitelist
type WhitelistChecker struct {
	prefixes []string
	logger   *zap.Logger
}

// NewWhitelistChecker creates a new whitelist checker. Entries are URL
// prefixes and match case-sensitively, exactly as the administrator entered
// them.
func NewWhitelistChecker(prefixes []string, logger *zap.Logger) *WhitelistChecker {
	if len(prefixes) > 0 && logger != nil {
		logger.Debug("Initialized whitelist checker", zap.Strings("prefixes", prefixes))
	}

	return &WhitelistChecker{
		prefixes: prefixes,
		logger:   logger,
	}
}

// IsWhitelisted checks if the literal extracted URL starts with a whitelist
// entry.
func (c *WhitelistChecker) IsWhitelisted(rawURL string) bool {
	if len(c.prefixes) == 0 {
		return false
	}

	for _, prefix := range c.prefixes {
		if prefix == "" {
			continue
		}
		if len(rawURL) >= len(prefix) && rawURL[:len(prefix)] == prefix {
			if c.logger != nil {
				c.logger.Debug("URL is whitelisted",
					zap.String("url", rawURL),
					zap.String("prefix", prefix))
			}
			return true
		}
	}

	return false
}
