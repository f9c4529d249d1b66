// Package phase contains the validation phases run by the pipeline.
//
// The structural phase runs first: it matches the message's segment
// sequence against the resolved structure grammar and walks every matched
// segment, emitting the leaf bindings the remaining phases consume. The
// four leaf layers (format, code table, lengths, value sets) are
// independent of each other and run as a parallel group.
package phase
