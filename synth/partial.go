package synth

import (
	"log"
	"math"
)

// A Partial is one sample-playback stream of a voice; an instrument plays
// up to two of them per note. It owns a sample cursor and the three
// modulators (TVP/TVF/TVA) and composes, for every output sample, the
// pitch the cursor advances by and the gain and pan applied to its output.
//
// Pitch corrections composed at construction (they never change while the
// note sounds):
//   - key difference between root key and played key (drums use the drum
//     map's play key instead)
//   - sample pitch correction from the sample control data
//   - master key shift and part key shift (drums: part key shift only on
//     SC-55mk2 and later)
//   - coarse and fine pitch from the partial definition
//   - pitch key follow from the partial definition
//
// Corrections composed per sample: master tune, scale tuning, part fine
// tune, fine tune offset in Hz, pitch bend, and the TVP output.
type Partial struct {
	key     int
	keyFreq float64 // frequency of the played MIDI key
	keyDiff float64 // distance in keys between played key and sample root

	instPartial *InstPartial
	ctrlSample  *Sample
	cur         cursor

	expFactor       float64 // ln(2) / 12000
	staticPitchTune float64

	settings *Settings
	partID   int

	isDrum  bool
	drumMap int

	tvp *TVP
	tvf *TVF
	tva *TVA

	dead bool // construction failed; report finished on first call
}

// NewPartial builds a voice partial for a note-on. Construction never
// fails loudly: a broken ROM reference is logged and yields a partial that
// reports terminated on the first GetNextSample call.
func NewPartial(key, partialID, instrumentIndex int, rom *ControlRom, pcm *PcmRom, lfos *[2]*LFO, settings *Settings, partID int) *Partial {
	p := &Partial{
		key:       key,
		keyFreq:   440 * math.Exp(math.Ln2*float64(key-69)/12),
		expFactor: math.Ln2 / 12000,
		settings:  settings,
		partID:    partID,
	}

	inst := rom.Instrument(instrumentIndex)
	p.instPartial = &inst.Partials[partialID]
	p.isDrum = settings.Patch(UseForRhythm, partID) != 0

	// 1: Static coarse tuning => key shifts
	keyShift := settings.Patch(PitchCoarseTune, partID) - 0x40
	if !p.isDrum {
		keyShift += settings.System(SystemKeyShift) - 0x40 +
			settings.Patch(PitchKeyShift, partID) - 0x40
	} else {
		if rom.Generation() >= GenSC55mk2 {
			keyShift += settings.Patch(PitchKeyShift, partID) - 0x40
		}
	}

	// 2: Find the sample from the break table, adjusting the key with the
	// key shifts
	pIndex := p.instPartial.PartialIndex
	sampleIndex := -1
	pd := rom.Partial(int(pIndex))
	for j := 0; j < 16; j++ {
		if int(pd.Breaks[j]) >= key+keyShift || pd.Breaks[j] == 0x7f {
			if pd.Samples[j] == 0xffff { // should never happen
				log.Printf("synth: bad sample index in partial %q break %d", pd.Name, j)
				p.dead = true
				return p
			}
			sampleIndex = int(pd.Samples[j])
			break
		}
	}
	if sampleIndex < 0 {
		log.Printf("synth: no break table entry for key %d in partial %q", key+keyShift, pd.Name)
		p.dead = true
		return p
	}

	p.ctrlSample = rom.Sample(sampleIndex)
	p.cur = newCursor(pcm.Samples(sampleIndex), p.ctrlSample)

	// 3: Difference in key between the note-on and the sample
	if p.isDrum {
		p.drumMap = settings.Patch(UseForRhythm, partID) - 1
		p.keyDiff = float64(keyShift +
			settings.Drum(DrumPlayKeyNumber, p.drumMap, key) - 0x3c)
	} else {
		p.keyDiff = float64(key + keyShift - p.ctrlSample.RootKey)
	}

	// 4: Pitch key follow
	pitchKeyFollow := 1.0
	if int(p.instPartial.PitchKeyFlw)-0x40 != 10 {
		pitchKeyFollow += (float64(p.instPartial.PitchKeyFlw) - 0x4a) / 10
	}

	// The -120 cent term is an empirically matched calibration against
	// hardware output; 32000 Hz is the ROM's native sample rate.
	p.staticPitchTune = math.Exp(((float64(p.instPartial.CoarsePitch)-0x40+p.keyDiff*pitchKeyFollow)*100+
		float64(p.instPartial.FinePitch)-0x40+
		float64(p.ctrlSample.Pitch-1024)/16-
		120)*
		math.Ln2/1200) *
		32000 / float64(settings.SampleRate())

	p.tvp = NewTVP(p.instPartial, lfos, settings, partID)
	p.tvf = NewTVF(p.instPartial, key, lfos, settings, partID)
	p.tva = NewTVA(p.instPartial, key, lfos, settings, partID)

	return p
}

// Stop initiates the release of all three modulators. Drums whose drum set
// has note-off reception disabled play on uninterrupted.
func (p *Partial) Stop() {
	if p.dead {
		return
	}
	if p.isDrum && p.settings.Drum(DrumRxNoteOff, p.drumMap, p.key) == 0 {
		return
	}
	p.tvp.NoteOff()
	p.tvf.NoteOff()
	p.tva.NoteOff()
}

// GetNextSample advances the partial one tick and accumulates its stereo
// contribution into frame. It returns true when the partial has terminated
// and should be discarded.
func (p *Partial) GetNextSample(frame *[2]float32) bool {
	if p.dead || p.tva.Finished() {
		return true
	}

	freqKeyTuned := p.keyFreq +
		float64(p.settings.PatchNib16(PitchOffsetFine, p.partID)-0x080)/10
	pitchOffsetHz := freqKeyTuned / p.keyFreq

	pitchExp := float64(p.settings.System(SystemTune)-0x400) +
		float64(p.settings.ScaleTuning(p.partID, p.key)-0x40)*10 +
		float64(p.settings.PatchUint16(PitchFineTune, p.partID)-8192)/8.192

	pitchAdj := math.Exp(pitchExp*p.expFactor) *
		pitchOffsetHz *
		p.settings.PitchBendFactor(p.partID) *
		p.staticPitchTune *
		p.tvp.Pitch()

	if p.cur.advance(float32(pitchAdj)) {
		return true
	}

	left := p.cur.out

	// Volume correction from the sample definition
	sampleVol := convertVolume(float64(p.ctrlSample.Volume) +
		float64(p.ctrlSample.FineVolume-1024)/1000)

	// Volume correction from the partial definition
	partialVol := convertVolume(float64(p.instPartial.Volume))

	// Volume correction from the drum set definition
	drumVol := 1.0
	if p.isDrum {
		drumVol = convertVolume(float64(p.settings.Drum(DrumLevel, p.drumMap, p.key)))
	}

	ctrlVol := float64(p.settings.Patch(AccAmplitudeControl, p.partID)) / 64

	left *= sampleVol * partialVol * drumVol * ctrlVol

	left = p.tvf.Apply(left)
	left *= p.tva.Amplification()

	right := left

	var panpot float64
	if !p.isDrum {
		panpot = (float64(p.instPartial.Panpot) - 0x40) / 64
	} else {
		panpot = float64(p.settings.Drum(DrumPanpot, p.drumMap, p.key)-0x40) / 64
	}
	if panpot < 0 {
		right *= 1 + panpot
	} else if panpot > 0 {
		left *= 1 - panpot
	}

	frame[0] += float32(left)
	frame[1] += float32(right)

	return false
}

// convertVolume maps a 7-bit volume to linear gain; 0x7f comes out at 1.0.
func convertVolume(v float64) float64 {
	return 0.1*math.Pow(2, v/36.7111) - 0.1
}
