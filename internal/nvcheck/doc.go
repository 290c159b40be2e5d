// Package nvcheck detects upstream version drift inside a synchronized
// repository mirror by delegating to the nvchecker and nvcmp tool pair. Any
// non-empty comparison report is treated as a drift finding.
package nvcheck
