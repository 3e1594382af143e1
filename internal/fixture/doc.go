// Package fixture measures the execution cost of an arbitrary operation.
//
// A Fixture runs a trial call, picks a measurement strategy from its
// duration, calibrates a batch size for fast operations and then records
// one timing per call together with the quality metrics a caller-supplied
// Gauge extracts from each result. Collection and tracing (through a global
// TracerSwitch) are suppressed around every timed call and restored
// afterwards.
//
// A Fixture is not safe for concurrent use, and neither is running two
// fixtures at once: both touch process-wide runtime state.
package fixture
