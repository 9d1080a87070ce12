package synth

import (
	"math"
	"testing"
)

func TestSettingsDefaults(t *testing.T) {
	s := NewSettings(44100)

	if want, got := 44100, s.SampleRate(); want != got {
		t.Errorf("sample rate: want %v, got %v", want, got)
	}
	if want, got := 0x400, s.System(SystemTune); want != got {
		t.Errorf("tune: want %#x, got %#x", want, got)
	}
	if want, got := 0x40, s.Patch(PitchCoarseTune, 3); want != got {
		t.Errorf("coarse tune: want %#x, got %#x", want, got)
	}
	if want, got := 8192, s.PatchUint16(PitchFineTune, 0); want != got {
		t.Errorf("fine tune: want %v, got %v", want, got)
	}
	if want, got := 0x080, s.PatchNib16(PitchOffsetFine, 0); want != got {
		t.Errorf("offset fine: want %#x, got %#x", want, got)
	}
	if want, got := 60, s.Drum(DrumPlayKeyNumber, 0, 60); want != got {
		t.Errorf("drum play key: want %v, got %v", want, got)
	}
	if want, got := 0x7f, s.Drum(DrumLevel, 1, 36); want != got {
		t.Errorf("drum level: want %v, got %v", want, got)
	}
}

func TestSettingsClamp(t *testing.T) {
	s := NewSettings(44100)

	s.SetPatch(AccAmplitudeControl, 0, 500)
	if want, got := 0x7f, s.Patch(AccAmplitudeControl, 0); want != got {
		t.Errorf("7-bit clamp high: want %v, got %v", want, got)
	}
	s.SetPatch(AccAmplitudeControl, 0, -3)
	if want, got := 0, s.Patch(AccAmplitudeControl, 0); want != got {
		t.Errorf("7-bit clamp low: want %v, got %v", want, got)
	}
	s.SetPatch(PitchFineTune, 0, 20000)
	if want, got := 16383, s.PatchUint16(PitchFineTune, 0); want != got {
		t.Errorf("14-bit clamp: want %v, got %v", want, got)
	}
}

func TestSettingsScaleTuning(t *testing.T) {
	s := NewSettings(44100)

	s.SetPatch(ScaleTuningCis, 2, 0x50)
	if want, got := 0x50, s.ScaleTuning(2, 61); want != got {
		t.Errorf("scale tuning for C#: want %#x, got %#x", want, got)
	}
	// 61 and 73 are the same scale degree
	if want, got := 0x50, s.ScaleTuning(2, 73); want != got {
		t.Errorf("scale tuning an octave up: want %#x, got %#x", want, got)
	}
	if want, got := 0x40, s.ScaleTuning(2, 60); want != got {
		t.Errorf("scale tuning for C: want %#x, got %#x", want, got)
	}
}

func TestPitchBendFactor(t *testing.T) {
	s := NewSettings(44100)

	if want, got := 1.0, s.PitchBendFactor(0); want != got {
		t.Errorf("center bend: want %v, got %v", want, got)
	}

	s.SetPitchBend(0, 16383)
	want := math.Exp2(2 * (16383.0 - 8192) / 8192 / 12)
	if got := s.PitchBendFactor(0); math.Abs(want-got) > 1e-9 {
		t.Errorf("full bend up: want %v, got %v", want, got)
	}

	// Widening the range rescales the factor for the current bend value.
	s.SetPatch(PitchBendRange, 0, 12)
	want = math.Exp2(12 * (16383.0 - 8192) / 8192 / 12)
	if got := s.PitchBendFactor(0); math.Abs(want-got) > 1e-9 {
		t.Errorf("full bend with wide range: want %v, got %v", want, got)
	}

	s.SetPitchBend(0, 0)
	if got := s.PitchBendFactor(0); got >= 1 {
		t.Errorf("bend down should lower pitch, factor %v", got)
	}
}
