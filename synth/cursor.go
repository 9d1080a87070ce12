package synth

import "math"

// cursor tracks a fractional read position over a PCM vector. Each advance
// consumes pitchAdj source samples: every integer position crossed is fed
// through the two reconstruction filters, and the loop topology decides
// what happens when the position runs past the sample or loop boundary.
//
// Index arithmetic is float32 on purpose; the filters hold float64 state.
type cursor struct {
	pcm  []float32
	ctrl *Sample

	index   float32 // fractional position in samples from the start
	dir     int     // +1 forward, -1 backward
	lastPos int     // last integer position fed through the filters
	out     float64 // most recent filtered output

	rf1, rf2 reconFilter
}

func newCursor(pcm []float32, ctrl *Sample) cursor {
	return cursor{
		pcm:  pcm,
		ctrl: ctrl,
		dir:  1,
		rf1:  newReconFilter(32000, 15),
		rf2:  newReconFilter(32000, 15),
	}
}

func round32(x float32) int {
	return int(math.Round(float64(x)))
}

// consume runs the PCM value at pos through the filter cascade. Positions
// outside the vector are ignored so a misconfigured sample record cannot
// take down the audio thread.
func (c *cursor) consume(pos int) {
	if pos < 0 || pos >= len(c.pcm) {
		return
	}
	c.out = c.rf2.apply(c.rf1.apply(float64(c.pcm[pos])))
}

// advance moves the cursor by pitchAdj source samples and returns true
// when a forward-stop sample has run past its end.
func (c *cursor) advance(pitchAdj float32) bool {
	sampleLen := c.ctrl.SampleLen
	loopLen := c.ctrl.LoopLen

	if c.dir == 1 {
		c.index += pitchAdj

		for round32(c.index) > c.lastPos && c.lastPos < sampleLen-1 {
			c.consume(c.lastPos)
			c.lastPos++
		}

		// The last sample is reserved for interpolation, so the boundary
		// sits one before the end.
		if c.index > float32(sampleLen-1) {
			remaining := c.index - float32(sampleLen)
			if remaining < 0 {
				remaining = -remaining
			}

			switch c.ctrl.LoopMode {
			case LoopForward:
				c.index = float32(sampleLen-loopLen-1) + remaining
				c.lastPos = sampleLen - loopLen - 1

				for round32(c.index) > c.lastPos {
					c.consume(c.lastPos)
					c.lastPos++
				}

			case LoopPingPong:
				c.index = float32(sampleLen) - remaining - 1
				c.dir = -1

				for round32(c.index) < c.lastPos {
					c.consume(c.lastPos)
					c.lastPos--
				}

			case LoopStop:
				return true
			}
		}

	} else {
		c.index -= pitchAdj

		for round32(c.index) < c.lastPos && c.lastPos > sampleLen-loopLen {
			c.consume(c.lastPos)
			c.lastPos--
		}

		if c.index < float32(sampleLen-loopLen-1) {
			// Flush whatever is left on the way down before turning.
			for c.lastPos > sampleLen-loopLen-1 {
				c.consume(c.lastPos)
				c.lastPos--
			}

			remaining := float32(sampleLen-loopLen) - c.index

			c.index = float32(sampleLen-loopLen) + remaining
			c.dir = 1

			c.lastPos = sampleLen - loopLen
			for round32(c.index) < c.lastPos {
				c.consume(c.lastPos)
				c.lastPos++
			}
		}
	}

	return false
}
