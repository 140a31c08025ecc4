// Package record stores tracking runs in SQLite so runs with different
// tuning can be compared after the fact.
//
// Each run gets a random UUID. Per-frame results are keyed by (run, frame);
// a side without an estimate is stored as NULL coordinates.
package record
