package synth

// TVF holds the time-variant filter state for one partial. The cutoff
// envelope runs so that note-off and phase timing behave like the other
// modulators, but Apply passes the signal through untouched: the filter
// transfer function is disabled, matching the reference behaviour this
// engine is calibrated against. See DESIGN.md.
type TVF struct {
	env *Envelope
	lfo *LFO
}

func NewTVF(ip *InstPartial, key int, lfos *[2]*LFO, settings *Settings, partID int) *TVF {
	var levels [5]float64
	for i, l := range ip.TVFEnv.Level {
		levels[i] = float64(l)
	}
	t := &TVF{
		env: NewEnvelopeAt(float64(ip.TVFBaseFlt), levels, ip.TVFEnv.Duration, settings, partID, "TVF"),
		lfo: lfos[1],
	}
	t.env.Start()
	return t
}

// Apply advances the filter envelope and returns the input unchanged.
func (t *TVF) Apply(sample float64) float64 {
	t.env.Next()
	return sample
}

func (t *TVF) NoteOff() { t.env.Release() }
