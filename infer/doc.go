// Package infer drives an injected beat/downbeat scoring model over feature
// matrices of arbitrary length.
//
// The trained model is consumed as an opaque [Scorer]. Long inputs are split
// into overlapping chunks, scored (optionally in parallel), and stitched back
// into one continuous pair of logit sequences whose length always equals the
// input frame count. Stitching discards the border frames of each chunk and
// resolves the remaining overlap keep-first, so results are invariant to how
// a recording is split.
package infer
