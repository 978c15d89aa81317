// Package links covers the URL stages of the pipeline: extraction of
// candidate URLs from normalized text, the tenant whitelist, the official
// platform-domain allow-list, and shortener resolution.
package links

import (
	"net/url"
	"strings"
)

// officialDomains is the fixed allow-list of the platform's own domains.
// Links on these domains are excluded from the similarity and blocklist
// checks, though their URLs are still scanned for malicious file extensions.
var officialDomains = []string{
	"airhorn.solutions",
	"airhornbot.com",
	"bigbeans.solutions",
	"dis.gd",
	"discord-activities.com",
	"discord.app",
	"discord.co",
	"discord.com",
	"discord.design",
	"discord.dev",
	"discord.gg",
	"discord.gift",
	"discord.gifts",
	"discord.media",
	"discord.new",
	"discord.store",
	"discord.tools",
	"discordactivities.com",
	"discordapp.com",
	"discordapp.io",
	"discordapp.net",
	"discordcdn.com",
	"discordmerch.com",
	"discordpartygames.com",
	"discordsays.com",
	"discordstatus.com",
	"watchanimeattheoffice.com",

	"discordjs.guide",
	"discord.me",
	"discords.com",
}

// IsOfficial reports whether the domain is an official platform domain,
// either exactly or as a subdomain.
func IsOfficial(domain string) bool {
	for _, official := range officialDomains {
		if domain == official || strings.HasSuffix(domain, "."+official) {
			return true
		}
	}
	return false
}

// Host returns the lowercased host of a URL, or "" when it cannot be parsed.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
