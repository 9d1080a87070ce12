package synth

import "math"

// TVP produces the time-variant pitch multiplier for one partial: a pitch
// envelope running in ratio space around 1.0, with vibrato from the part's
// first LFO on top.
type TVP struct {
	env      *Envelope
	lfo      *LFO
	lfoDepth float64
}

func NewTVP(ip *InstPartial, lfos *[2]*LFO, settings *Settings, partID int) *TVP {
	// Envelope levels are centered on 0x40 and scaled by the partial's
	// envelope depth into cents, then mapped to ratios.
	scale := float64(ip.PitchEnvDepth) / 0x40
	var ratios [5]float64
	for i, l := range ip.PitchEnv.Level {
		cents := float64(int(l)-0x40) * scale
		ratios[i] = math.Exp(cents * math.Ln2 / 1200)
	}

	depth := float64(int(ip.PitchLFODepth)+settings.Patch(VibratoDepth, partID)-0x40) / 1024

	t := &TVP{
		env:      NewEnvelopeAt(1, ratios, ip.PitchEnv.Duration, settings, partID, "TVP"),
		lfo:      lfos[0],
		lfoDepth: depth,
	}
	t.env.Start()
	return t
}

// Pitch advances the envelope and returns the combined pitch multiplier.
func (t *TVP) Pitch() float64 {
	p := t.env.Next()
	if t.lfoDepth != 0 {
		p *= 1 + t.lfo.Value()*t.lfoDepth
	}
	return p
}

func (t *TVP) NoteOff() { t.env.Release() }
