// Package observability provides client.EventSink implementations. The client
// itself never logs; a caller picks the sinks it wants and combines them with
// Multi.
//
// Key Components:
//
//   - LoggerSink: Renders events through a dragonboat logger.ILogger, the
//     logging facade used throughout dDiam (see common.CreateLogger).
//
//   - ZerologSink: Writes structured events with zerolog, used by the CLI when
//     --log-format json is set. NewZerolog builds the logger.
//
//   - MetricsSink: Counts events per type and endpoint in a VictoriaMetrics set
//     and exposes the pending table size as a gauge.
package observability
