// Package resample normalizes raw PCM to the fixed-rate mono stream the
// analysis frontend expects.
//
// It combines per-frame channel averaging with rational sample-rate
// conversion through a Kaiser-windowed polyphase FIR, so arbitrary input
// formats reduce to mono audio at a single target rate without aliasing.
//
// Common workflows:
//   - Prepare(interleaved, channels, inRate, outRate) for the full
//     mono-mix + rate-conversion path
//   - Downmix(interleaved, channels) for channel averaging only
//   - NewConverter(inRate, outRate, opts...) when the filter should be
//     designed once and reused across recordings
package resample
