package crawl

import (
	"fmt"
	"strings"
)

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		// Too short for "..." prefix, just return dots
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatBytes formats bytes in human-readable form.
func FormatBytes(bytes int) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatSummary describes a finished crawl of baseURL in a few lines.
func FormatSummary(baseURL string, result *Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Crawled %s\n", baseURL)
	fmt.Fprintf(&sb, "Collection: %s\n", result.SiteKey)
	fmt.Fprintf(&sb, "Pages indexed: %d (%s)\n", result.Pages, FormatBytes(result.Bytes))
	fmt.Fprintf(&sb, "Chunks: %d across %d sections\n", result.Chunks, result.Sections)
	if result.Failed > 0 || result.Skipped > 0 {
		fmt.Fprintf(&sb, "Pages failed: %d, skipped: %d\n", result.Failed, result.Skipped)
	}
	if result.FailedBatches > 0 {
		fmt.Fprintf(&sb, "Warning: %d vector batches failed; lexical search still covers those pages\n", result.FailedBatches)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
