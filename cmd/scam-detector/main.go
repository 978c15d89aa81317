package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/adapters/feed"
	"github.com/dotfriends/asca/internal/adapters/reportsink"
	"github.com/dotfriends/asca/internal/adapters/reputation"
	"github.com/dotfriends/asca/internal/blocklist"
	"github.com/dotfriends/asca/internal/config"
	"github.com/dotfriends/asca/internal/core"
	"github.com/dotfriends/asca/internal/detector"
	"github.com/dotfriends/asca/internal/links"
	"github.com/dotfriends/asca/internal/logging"
	"github.com/dotfriends/asca/internal/textnorm"
)

var (
	// Detection flags
	brand          = flag.String("brand", "discord", "Brand name to protect against typosquatting")
	threshold      = flag.Float64("threshold", 0.85, "Similarity threshold for typosquat detection")
	whitelist      = flag.String("whitelist", "", "Comma-separated list of whitelisted URL prefixes")
	reputationKey  = flag.String("reputation-api-key", "", "API key for the URL reputation service")
	fetchBlocklist = flag.Bool("fetch-blocklist", false, "Fetch the remote blocklist before classifying")
	blocklistURL   = flag.String("blocklist-url", "https://raw.githubusercontent.com/DevSpen/scam-links/master/src/links.txt", "Remote blocklist URL")

	// Link resolution flags
	shorteners     = flag.String("shorteners", "", "Comma-separated list of shortener hosts to resolve")
	resolveTimeout = flag.Duration("resolve-timeout", 8*time.Second, "Timeout for shortener resolution")

	// Input flags
	inputFile = flag.String("file", "", "Input message file (use stdin if not specified)")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog   = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Read message text from file or stdin
	var reader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		reader = file
		logger.Info("Reading message from file", zap.String("file", *inputFile))
	} else {
		reader = os.Stdin
		logger.Info("Reading message from stdin")
	}

	raw, err := io.ReadAll(bufio.NewReader(reader))
	if err != nil {
		logger.Fatal("Failed to read message", zap.Error(err))
	}
	content := strings.TrimRight(string(raw), "\n")

	ctx := context.Background()

	// Layer the flags over the service defaults so the CLI classifies with
	// the same configuration surface as the daemon.
	v := config.NewEmptyViper()
	v.Set("detector.brand", *brand)
	v.Set("detector.similarity_threshold", *threshold)
	v.Set("blocklist.url", *blocklistURL)
	v.Set("reputation.api_key", *reputationKey)
	v.Set("resolver.timeout", resolveTimeout.String())
	if *shorteners != "" {
		v.Set("resolver.shorteners", splitList(*shorteners))
	}
	cfg := config.NewFromViper(v)

	burstWindow, err := cfg.GetDuration("detector.burst_window")
	if err != nil {
		logger.Fatal("Invalid burst window", zap.Error(err))
	}
	fetchTimeout, err := cfg.GetDuration("blocklist.fetch_timeout")
	if err != nil {
		logger.Fatal("Invalid blocklist fetch timeout", zap.Error(err))
	}
	resolverTimeout, err := cfg.GetDuration("resolver.timeout")
	if err != nil {
		logger.Fatal("Invalid resolver timeout", zap.Error(err))
	}

	// Build the blocklist
	store := blocklist.NewStore(
		feed.NewHTTPFeed(cfg.GetString("blocklist.url"), fetchTimeout, logger),
		cfg.GetStringSlice("blocklist.pending"), 0, logger)
	if *fetchBlocklist {
		fmt.Printf("Fetching blocklist from %s...\n", cfg.GetString("blocklist.url"))
		if err := store.Refresh(ctx); err != nil {
			logger.Warn("Blocklist fetch failed, continuing without", zap.Error(err))
		} else {
			fmt.Printf("Blocklist loaded: %d domains\n", store.Current().Len())
		}
	}

	// Build the reputation service
	repService, err := reputation.NewSafeBrowsingService(ctx, cfg.GetString("reputation.api_key"), logger)
	if err != nil {
		logger.Fatal("Failed to create reputation service", zap.Error(err))
	}

	// Build the pipeline stages
	extractor := links.NewExtractor(logger)
	normalizer := textnorm.New(links.TLDs())
	resolver := links.NewResolver(cfg.GetStringSlice("resolver.shorteners"), resolverTimeout, logger)
	reports := reportsink.NewMemorySink(logger)
	classifier := detector.NewClassifier(
		cfg.GetString("detector.brand"),
		cfg.GetFloat64("detector.similarity_threshold"),
		cfg.GetInt("detector.burst_threshold"),
		burstWindow,
		store, repService, reports, logger)

	// Print message summary
	fmt.Printf("\n=== Message Summary ===\n")
	fmt.Printf("Length: %d bytes\n", len(content))
	if *verbose {
		preview := content
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nPreview:\n%s\n", preview)
	}

	// Run the pipeline
	fmt.Printf("\n=== Analysis ===\n")
	startTime := time.Now()

	normalized := normalizer.Normalize(content)
	urls := extractor.Extract(normalized, splitList(*whitelist))
	urls = resolver.Resolve(ctx, urls)

	msg := &core.Message{
		ID:        "cli",
		TenantID:  "cli",
		Content:   content,
		CreatedAt: time.Now(),
	}
	verdict := classifier.Classify(ctx, &core.ClassifyInput{
		Message:        msg,
		NormalizedText: normalized,
		URLs:           urls,
	})
	duration := time.Since(startTime)

	// Print results
	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Is scam: %t\n", verdict.Scam)
	if verdict.Scam {
		fmt.Printf("Reason: %s\n", verdict.Reason)
		if verdict.Evidence != "" {
			fmt.Printf("Evidence:\n%s\n", verdict.Evidence)
		}
	}
	fmt.Printf("Extracted URLs: %s\n", strings.Join(urls, ", "))
	fmt.Printf("Processing time: %v\n", duration)

	for report, ok := reports.NextReport(); ok; report, ok = reports.NextReport() {
		fmt.Printf("Reportable evidence: %s\n", report)
	}

	if verdict.Scam {
		os.Exit(2)
	}
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
