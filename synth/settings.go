package synth

import (
	"math"
	"sync/atomic"
)

// NumParts is the number of MIDI parts the engine serves.
const NumParts = 16

// NumDrumMaps is the number of simultaneous drum maps (MAP1/MAP2).
const NumDrumMaps = 2

type SystemParam int

const (
	SystemSampleRate SystemParam = iota
	SystemTune                   // nibblized master tune, centered on 0x400
	SystemKeyShift               // semitones, centered on 0x40
	numSystemParams
)

type PatchParam int

const (
	ToneNumber PatchParam = iota
	UseForRhythm // 0 = melodic, 1 = drum map 1, 2 = drum map 2
	PitchCoarseTune
	PitchKeyShift
	PitchFineTune   // 14 bit, centered on 8192
	PitchOffsetFine // nibble pair, centered on 0x080
	PitchBendRange
	AccAmplitudeControl
	TVFAEnvAttack
	TVFAEnvDecay
	TVFAEnvRelease
	VibratoRate
	VibratoDepth
	VibratoDelay

	// Per-degree scale tuning, 12 consecutive entries from C to B.
	ScaleTuningC
	ScaleTuningCis
	ScaleTuningD
	ScaleTuningDis
	ScaleTuningE
	ScaleTuningF
	ScaleTuningFis
	ScaleTuningG
	ScaleTuningGis
	ScaleTuningA
	ScaleTuningAis
	ScaleTuningB

	numPatchParams
)

type DrumParam int

const (
	DrumPlayKeyNumber DrumParam = iota
	DrumLevel
	DrumPanpot
	DrumRxNoteOff
	numDrumParams
)

// Settings is the shared parameter store. Every parameter is a word-sized
// integer held in an atomic, so the audio thread reads with plain atomic
// loads while the control thread stores updates; a half-written value can
// never be observed. Values outside a parameter's range are clamped on the
// way in.
type Settings struct {
	system [numSystemParams]atomic.Int32
	patch  [NumParts][numPatchParams]atomic.Int32
	drum   [NumDrumMaps][numDrumParams][128]atomic.Int32

	// Pitch bend factors are precomputed on the control side so the audio
	// thread never calls Pow.
	bendFactor [NumParts]atomic.Uint64
	bendValue  [NumParts]atomic.Int32
}

// NewSettings returns a store with every parameter at its power-on default.
func NewSettings(sampleRate int) *Settings {
	s := &Settings{}
	s.system[SystemSampleRate].Store(int32(sampleRate))
	s.system[SystemTune].Store(0x400)
	s.system[SystemKeyShift].Store(0x40)

	for part := 0; part < NumParts; part++ {
		s.patch[part][PitchCoarseTune].Store(0x40)
		s.patch[part][PitchKeyShift].Store(0x40)
		s.patch[part][PitchFineTune].Store(8192)
		s.patch[part][PitchOffsetFine].Store(0x080)
		s.patch[part][PitchBendRange].Store(2)
		s.patch[part][AccAmplitudeControl].Store(0x40)
		s.patch[part][TVFAEnvAttack].Store(0x40)
		s.patch[part][TVFAEnvDecay].Store(0x40)
		s.patch[part][TVFAEnvRelease].Store(0x40)
		s.patch[part][VibratoRate].Store(0x40)
		s.patch[part][VibratoDepth].Store(0x40)
		s.patch[part][VibratoDelay].Store(0x40)
		for p := ScaleTuningC; p <= ScaleTuningB; p++ {
			s.patch[part][p].Store(0x40)
		}
		s.bendValue[part].Store(8192)
		s.bendFactor[part].Store(math.Float64bits(1))
	}

	for m := 0; m < NumDrumMaps; m++ {
		for key := 0; key < 128; key++ {
			s.drum[m][DrumPlayKeyNumber][key].Store(int32(key))
			s.drum[m][DrumLevel][key].Store(0x7f)
			s.drum[m][DrumPanpot][key].Store(0x40)
			s.drum[m][DrumRxNoteOff][key].Store(0)
		}
	}
	return s
}

func (s *Settings) System(p SystemParam) int { return int(s.system[p].Load()) }

func (s *Settings) SampleRate() int { return int(s.system[SystemSampleRate].Load()) }

func (s *Settings) SetSystem(p SystemParam, v int) {
	switch p {
	case SystemTune:
		v = clampInt(v, 0, 0x7ff)
	case SystemKeyShift:
		v = clampInt(v, 0, 0x7f)
	}
	s.system[p].Store(int32(v))
}

// Patch returns the raw value of a per-part parameter.
func (s *Settings) Patch(p PatchParam, part int) int {
	return int(s.patch[part][p].Load())
}

// PatchUint16 reads a 14/16-bit parameter such as PitchFineTune.
func (s *Settings) PatchUint16(p PatchParam, part int) int {
	return int(s.patch[part][p].Load())
}

// PatchNib16 reads a nibblized byte pair such as PitchOffsetFine.
func (s *Settings) PatchNib16(p PatchParam, part int) int {
	return int(s.patch[part][p].Load())
}

// ScaleTuning returns the scale-tuning offset for a key's scale degree.
func (s *Settings) ScaleTuning(part, key int) int {
	return int(s.patch[part][ScaleTuningC+PatchParam(key%12)].Load())
}

func (s *Settings) SetPatch(p PatchParam, part, v int) {
	switch p {
	case PitchFineTune:
		v = clampInt(v, 0, 16383)
	case PitchOffsetFine:
		v = clampInt(v, 0, 0xff)
	case ToneNumber:
		if v < 0 {
			v = 0
		}
	default:
		v = clampInt(v, 0, 0x7f)
	}
	s.patch[part][p].Store(int32(v))
	if p == PitchBendRange {
		s.updateBendFactor(part)
	}
}

func (s *Settings) Drum(p DrumParam, m, key int) int {
	return int(s.drum[m][p][key&0x7f].Load())
}

func (s *Settings) SetDrum(p DrumParam, m, key, v int) {
	s.drum[m][p][key&0x7f].Store(int32(clampInt(v, 0, 0x7f)))
}

// SetPitchBend takes the raw 14-bit controller value (center 8192) and
// precomputes the pitch multiplier for the part.
func (s *Settings) SetPitchBend(part, bend int) {
	s.bendValue[part].Store(int32(clampInt(bend, 0, 16383)))
	s.updateBendFactor(part)
}

func (s *Settings) updateBendFactor(part int) {
	bend := float64(s.bendValue[part].Load()-8192) / 8192
	semitones := float64(s.patch[part][PitchBendRange].Load())
	factor := math.Exp2(bend * semitones / 12)
	s.bendFactor[part].Store(math.Float64bits(factor))
}

// PitchBendFactor returns the precomputed multiplicative pitch modifier.
func (s *Settings) PitchBendFactor(part int) float64 {
	return math.Float64frombits(s.bendFactor[part].Load())
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
