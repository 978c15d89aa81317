package config

// DetectorConfig represents the configuration for the scam classifier
type DetectorConfig struct {
	Brand               string
	SimilarityThreshold float64
	BurstThreshold      int
}

// BlocklistConfig represents the configuration for the shared blocklist
type BlocklistConfig struct {
	URL     string
	Pending []string
}

// ReputationConfig represents the configuration for the reputation service
type ReputationConfig struct {
	APIKey string
}

// ResolverConfig represents the configuration for link resolution
type ResolverConfig struct {
	Shorteners []string
}

// GetDetector returns the classifier configuration
func (c *Config) GetDetector() DetectorConfig {
	return DetectorConfig{
		Brand:               c.GetString("detector.brand"),
		SimilarityThreshold: c.GetFloat64("detector.similarity_threshold"),
		BurstThreshold:      c.GetInt("detector.burst_threshold"),
	}
}

// GetBlocklist returns the blocklist configuration
func (c *Config) GetBlocklist() BlocklistConfig {
	return BlocklistConfig{
		URL:     c.GetString("blocklist.url"),
		Pending: c.GetStringSlice("blocklist.pending"),
	}
}

// GetReputation returns the reputation service configuration
func (c *Config) GetReputation() ReputationConfig {
	return ReputationConfig{
		APIKey: c.GetString("reputation.api_key"),
	}
}

// GetResolver returns the link resolution configuration
func (c *Config) GetResolver() ResolverConfig {
	return ResolverConfig{
		Shorteners: c.GetStringSlice("resolver.shorteners"),
	}
}
