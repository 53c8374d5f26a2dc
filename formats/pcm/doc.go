// SPDX-License-Identifier: EPL-2.0

// Package pcm turns a speech service payload into samples.
//
// DecodeTransport strips the base64 transport layer and Interpret reads the
// resulting bytes as interleaved signed 16-bit little-endian PCM. Both are pure
// functions. Decoder and TransportDecoder adapt them to audio.Decoder so raw
// files can be registered in an audio.Registry.
package pcm
