// Package melspec extracts log-compressed mel spectrogram frames from
// fixed-rate mono audio.
//
// The extractor mirrors a torchaudio-style STFT frontend: reflection padding
// of FFTSize/2 samples on both sides (center convention), a periodic Hann
// analysis window, amplitude spectra normalized by sqrt(FFTSize), a
// Slaney-scale triangular mel filterbank, and log1p compression with a
// numeric floor. Output is bit-reproducible for identical input and
// configuration.
package melspec
