package synth

import (
	"math"
	"testing"
)

func rampPCM(n int) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = float32(i) / float32(n)
	}
	return buf
}

func TestCursorForwardLoopWindow(t *testing.T) {
	ctrl := &Sample{SampleLen: 100, LoopLen: 20, LoopMode: LoopForward}
	c := newCursor(rampPCM(100), ctrl)

	for i := 0; i < 200; i++ {
		if c.advance(1.0) {
			t.Fatalf("forward loop terminated at advance %d", i)
		}
		if c.dir != 1 {
			t.Fatalf("forward loop changed direction at advance %d", i)
		}
		if i >= 120 {
			pos := round32(c.index)
			if pos < 79 || pos > 99 {
				t.Fatalf("advance %d: index %v outside loop window", i, pos)
			}
			if c.lastPos < 79 || c.lastPos > 99 {
				t.Fatalf("advance %d: lastPos %v outside loop window", i, c.lastPos)
			}
		}
	}
}

func TestCursorForwardLoopFractionalPitch(t *testing.T) {
	ctrl := &Sample{SampleLen: 100, LoopLen: 20, LoopMode: LoopForward}
	c := newCursor(rampPCM(100), ctrl)

	for i := 0; i < 400; i++ {
		if c.advance(0.713) {
			t.Fatalf("terminated at advance %d", i)
		}
		if d := math.Abs(float64(round32(c.index) - c.lastPos)); d > 1 {
			t.Fatalf("advance %d: index %v and lastPos %v diverged", i, c.index, c.lastPos)
		}
	}
}

func TestCursorPingPong(t *testing.T) {
	ctrl := &Sample{SampleLen: 100, LoopLen: 100, LoopMode: LoopPingPong}
	c := newCursor(rampPCM(100), ctrl)

	turns := 0
	dir := c.dir
	for i := 0; i < 500; i++ {
		if c.advance(1.0) {
			t.Fatalf("ping-pong terminated at advance %d", i)
		}
		if c.dir != dir {
			turns++
			dir = c.dir
		}
		if c.dir != 1 && c.dir != -1 {
			t.Fatalf("advance %d: invalid direction %d", i, c.dir)
		}
		if pos := round32(c.index); pos < -1 || pos > 99 {
			t.Fatalf("advance %d: index %v outside sample", i, pos)
		}
	}
	if turns < 3 {
		t.Errorf("expected at least 3 turnarounds in 500 advances, got %d", turns)
	}
}

func TestCursorForwardStop(t *testing.T) {
	ctrl := &Sample{SampleLen: 50, LoopLen: 0, LoopMode: LoopStop}
	c := newCursor(rampPCM(50), ctrl)

	terminated := -1
	for i := 0; i < 80; i++ {
		if c.advance(1.0) {
			terminated = i
			break
		}
	}
	if terminated == -1 {
		t.Fatal("forward-stop sample never terminated")
	}
	for i := 0; i < 10; i++ {
		if !c.advance(1.0) {
			t.Fatal("terminated cursor came back to life")
		}
	}
}

func TestCursorFilterDC(t *testing.T) {
	buf := make([]float32, 200)
	for i := range buf {
		buf[i] = 0.5
	}
	ctrl := &Sample{SampleLen: 200, LoopLen: 50, LoopMode: LoopForward}
	c := newCursor(buf, ctrl)

	for i := 0; i < 100; i++ {
		c.advance(1.0)
	}
	if math.Abs(c.out-0.5) > 1e-3 {
		t.Errorf("DC gain through reconstruction filters: want 0.5, got %v", c.out)
	}
}

func TestCursorLinearity(t *testing.T) {
	full := rampPCM(100)
	half := make([]float32, len(full))
	for i := range half {
		half[i] = full[i] / 2
	}
	ctrl := &Sample{SampleLen: 100, LoopLen: 20, LoopMode: LoopForward}
	a := newCursor(full, ctrl)
	b := newCursor(half, ctrl)

	for i := 0; i < 300; i++ {
		a.advance(1.0)
		b.advance(1.0)
		if math.Abs(a.out-2*b.out) > 1e-6 {
			t.Fatalf("advance %d: scaling is not linear: %v vs %v", i, a.out, b.out)
		}
	}
}
