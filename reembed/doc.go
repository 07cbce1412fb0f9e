// Package reembed generates embedding vectors for icon catalogs in
// bulk. A bounded worker pool embeds each icon's normalized
// description, with per-call retry, exponential backoff, and progress
// reporting for long-running administrative regeneration.
package reembed
