// Package dealrater extracts vehicle listings from dealer inventory pages and
// rates each listing against the market average of the page it came from.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, rod/, sqlite/).
package dealrater
