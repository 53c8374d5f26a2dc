// SPDX-License-Identifier: EPL-2.0

// Package speech wraps text-to-speech providers behind Synthesizer.
//
// Providers return raw PCM in transport form (Audio) so the result can be fed
// to pcmwav.Pipeline unchanged. Gemini is backed by google.golang.org/genai and
// always produces 24 kHz mono audio.
package speech
