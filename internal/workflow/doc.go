// Package workflow coordinates the daily content pipeline: run creation,
// idea and script generation, event-driven handoff to video synthesis and
// publishing, run settlement, the cron trigger, and the stuck-run reaper.
//
// A run is a single end-to-end execution. The top-level function dispatches
// one video.generate event per script, waits (bounded) for the dispatched
// work to settle, and closes the run. Every step inside a run is memoized
// through the steps package so duplicate event deliveries cannot double
// side effects. The reaper is the crash backstop: runs still marked running
// past the stuck threshold are failed with a timeout error.
package workflow
