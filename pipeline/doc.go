// SPDX-License-Identifier: EPL-2.0

// Package pipeline runs one cleanup job: decode, filter-and-capture, then
// transcode. Progress is an explicit state machine whose states map to the
// status lines a Display shows.
//
//	Idle -> Loading -> Filtering -> Converting -> Succeeded | Failed -> Idle
package pipeline
