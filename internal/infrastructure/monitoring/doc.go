/*
Package monitoring provides Prometheus metrics for the bridge.

# Overview

Every bridge owns a Metrics value registered on its own registry, tracking
helper calls, callback events, dropped frames and the helper process
lifecycle. A nil *Metrics records nothing, so components accept one
optionally.

# Metrics

- mist_calls_total{op,outcome} and mist_call_duration_seconds{op}
- mist_pending_calls, mist_late_responses_total
- mist_events_total{callback}, mist_dropped_frames_total{reason}
- mist_helper_starts_total{outcome}, mist_helper_exits_total{cause}, mist_helper_state

# Usage

	metrics := monitoring.NewMetrics(nil)

	timer := monitoring.NewTimer(metrics, "apps.get_dlc_count")
	// ... perform call ...
	timer.Stop(monitoring.OutcomeSuccess)

	// Dump in text exposition format
	metrics.WriteText(os.Stdout)
*/
package monitoring
