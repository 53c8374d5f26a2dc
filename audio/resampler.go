// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/pcmwav/utils"
)

// Resampler converts src to another sample rate with Catmull-Rom interpolation
// over interleaved frames. The channel count is preserved. A one-pole low-pass
// runs ahead of the interpolator when downsampling.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames consumed per output frame
	channels int

	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2
	frames   [4][]float32
	hasFrame [4]bool
	primed   bool

	pos    float64
	srcBuf []float32
	eof    bool

	filterState []float32
	filterInit  bool
	useFilter   bool
	filterAlpha float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		dstRate:     dstRate,
		ratio:       ratio,
		channels:    channels,
		srcBuf:      make([]float32, channels),
		useFilter:   ratio > 1.0,
		filterAlpha: 0.5,
		filterState: make([]float32, channels),
	}

	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// readFrame pulls exactly one frame from the source into dst.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	n, err := r.src.ReadSamples(r.srcBuf)
	got := n == r.channels
	if got {
		if r.useFilter && !r.filterInit {
			copy(r.filterState, r.srcBuf)
			r.filterInit = true
		}

		copy(dst, r.srcBuf)
		if r.useFilter {
			for c := range r.channels {
				dst[c] = r.filterAlpha*dst[c] + (1-r.filterAlpha)*r.filterState[c]
				r.filterState[c] = dst[c]
			}
		}
	}

	if err == io.EOF {
		r.eof = true
		return got, nil
	}
	if err != nil {
		return got, fmt.Errorf("%w", err)
	}

	return got, nil
}

// prime fills frames[1..3] and mirrors the first frame into frames[0].
func (r *Resampler) prime() error {
	r.primed = true

	for i := 1; i < len(r.frames) && !r.eof; i++ {
		ok, err := r.readFrame(r.frames[i])
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		r.hasFrame[i] = true
	}

	if r.hasFrame[1] {
		copy(r.frames[0], r.frames[1])
		r.hasFrame[0] = true
	}

	return nil
}

// advance shifts the interpolation window forward by one source frame.
func (r *Resampler) advance() error {
	copy(r.frames[0], r.frames[1])
	copy(r.frames[1], r.frames[2])
	copy(r.frames[2], r.frames[3])
	r.hasFrame[0] = r.hasFrame[1]
	r.hasFrame[1] = r.hasFrame[2]
	r.hasFrame[2] = r.hasFrame[3]
	r.hasFrame[3] = false

	if r.eof {
		return nil
	}

	ok, err := r.readFrame(r.frames[3])
	r.hasFrame[3] = ok

	return err
}

// ReadSamples produces interleaved samples at the destination rate.
// len(dst) must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	want := len(dst) / r.channels

	for written < want {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		// Interpolation runs between frames[1] and frames[2].
		if !r.hasFrame[1] {
			return written * r.channels, io.EOF
		}

		for c := range r.channels {
			y0 := r.frames[0][c]
			y1 := r.frames[1][c]
			y2 := y1
			if r.hasFrame[2] {
				y2 = r.frames[2][c]
			}
			y3 := y2
			if r.hasFrame[3] {
				y3 = r.frames[3][c]
			}

			dst[written*r.channels+c] = utils.CubicInterpolate(y0, y1, y2, y3, float32(r.pos))
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
