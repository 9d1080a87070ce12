package synth

// TVA produces the time-variant amplitude for one partial: an amplitude
// envelope in linear gain, with tremolo from the part's second LFO. The
// envelope's phase durations scale with the played key, so high notes
// decay faster.
type TVA struct {
	env      *Envelope
	lfo      *LFO
	lfoDepth float64
}

func NewTVA(ip *InstPartial, key int, lfos *[2]*LFO, settings *Settings, partID int) *TVA {
	var levels [5]float64
	for i, l := range ip.TVAEnv.Level {
		levels[i] = convertVolume(float64(l))
	}

	t := &TVA{
		env:      NewEnvelope(levels, ip.TVAEnv.Duration, ip.TVAEnv.Shape, key, settings, partID, "TVA"),
		lfo:      lfos[1],
		lfoDepth: float64(ip.TVALFODepth) / 256,
	}
	t.env.Start()
	return t
}

// Amplification advances the envelope and returns the current gain.
func (t *TVA) Amplification() float64 {
	a := t.env.Next()
	if t.lfoDepth != 0 {
		a *= 1 + t.lfo.Value()*t.lfoDepth
	}
	return a
}

func (t *TVA) Finished() bool { return t.env.Finished() }

func (t *TVA) NoteOff() { t.env.Release() }
