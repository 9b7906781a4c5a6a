// Package report provides residency.Sink implementations: a structured
// log sink (one record per tick), a fan-out sink, and a sink that uploads
// the run's snapshots to S3 as JSON lines.
package report
