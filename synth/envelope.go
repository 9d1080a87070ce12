package synth

import (
	"log"
	"math"
)

type envPhase int

const (
	phaseOff envPhase = iota
	phaseAttack
	phaseHold
	phaseDecay
	phaseSustain
	phaseRelease
)

// Envelope is a five phase AHDSR generator producing one scalar per
// sample. The target value, 7-bit duration and shape flag for a phase are
// looked up at phase-1, leaving the off slot without configuration.
// Attack, decay and release durations are offset by the part's envelope
// patch parameters before conversion to samples.
type Envelope struct {
	id     string
	partID int
	key    int // scales phase durations towards zero for high keys; -1 disables

	settings   *Settings
	sampleRate float64

	phaseValue    [5]float64
	phaseDuration [5]uint8
	phaseShape    [5]bool

	phase         envPhase
	terminalPhase envPhase
	initValue     float64
	current       float64
	sampleIndex   int
	sampleLen     int
	finished      bool
}

// NewEnvelope returns an envelope that rises from zero. Used for TVA,
// where phase durations scale with the played key.
func NewEnvelope(values [5]float64, durations [5]uint8, shapes [5]bool, key int, settings *Settings, partID int, id string) *Envelope {
	return &Envelope{
		id:            id,
		partID:        partID,
		key:           key,
		settings:      settings,
		sampleRate:    float64(settings.SampleRate()),
		phaseValue:    values,
		phaseDuration: durations,
		phaseShape:    shapes,
		phase:         phaseOff,
		terminalPhase: phaseRelease,
	}
}

// NewEnvelopeAt returns an envelope starting from an explicit value, for
// pitch and filter envelopes whose resting point is not zero. All phases
// are linear and durations are never key scaled.
func NewEnvelopeAt(init float64, values [5]float64, durations [5]uint8, settings *Settings, partID int, id string) *Envelope {
	return &Envelope{
		id:            id,
		partID:        partID,
		key:           -1,
		settings:      settings,
		sampleRate:    float64(settings.SampleRate()),
		phaseValue:    values,
		phaseDuration: durations,
		phase:         phaseOff,
		terminalPhase: phaseRelease,
		current:       init,
	}
}

// Start moves the envelope from off into attack. Calling it again after
// the envelope has started has no effect.
func (e *Envelope) Start() {
	if e.phase != phaseOff {
		return
	}
	e.initPhase(phaseAttack)
}

// Release forces an immediate transition into the release phase from any
// active phase. A second call during release is a no-op.
func (e *Envelope) Release() {
	if e.phase == phaseRelease {
		return
	}
	e.initPhase(phaseRelease)
}

func (e *Envelope) Finished() bool { return e.finished }

// Value returns the output of the most recent Next call.
func (e *Envelope) Value() float64 { return e.current }

func (e *Envelope) initPhase(newPhase envPhase) {
	if newPhase == phaseOff {
		log.Printf("synth: envelope %s: illegal transition to off", e.id)
		return
	}

	e.initValue = e.current

	duration := int(e.phaseDuration[newPhase-1])
	switch newPhase {
	case phaseAttack:
		duration += e.settings.Patch(TVFAEnvAttack, e.partID) - 0x40
	case phaseDecay:
		duration += e.settings.Patch(TVFAEnvDecay, e.partID) - 0x40
	case phaseRelease:
		duration += e.settings.Patch(TVFAEnvRelease, e.partID) - 0x40
	}
	if duration < 0 {
		duration = 0
	}
	if duration > 127 {
		duration = 127
	}

	e.sampleLen = int(math.Round(timeToSec(duration, e.key) * e.sampleRate))
	e.sampleIndex = 0
	e.phase = newPhase
}

// timeToSec converts a 7-bit envelope time to seconds. The curve is an
// approximation of the LUT in the control ROM. A non-negative key shortens
// the time, scaling by (1 - key/128).
func timeToSec(t, key int) float64 {
	sec := math.Pow(2, float64(t)/18)/5.45 - 0.183
	if key < 0 {
		return sec
	}
	return sec * (1 - float64(key)/128)
}

// Next advances the envelope one sample and returns the current output.
// Calling Next before Start is an internal error: it is logged and yields
// zero. After the release phase runs out the envelope reports finished and
// keeps returning zero.
func (e *Envelope) Next() float64 {
	switch e.phase {
	case phaseOff:
		log.Printf("synth: envelope %s used in off phase", e.id)
		return 0

	case phaseAttack:
		if e.sampleIndex > e.sampleLen {
			e.initPhase(phaseHold)
		}

	case phaseHold:
		if e.sampleIndex > e.sampleLen {
			e.initPhase(phaseDecay)
		}

	case phaseDecay:
		if e.sampleIndex > e.sampleLen {
			e.initPhase(phaseSustain)
		}

	case phaseSustain:
		if e.sampleIndex > e.sampleLen {
			if e.phaseValue[phaseSustain-1] == 0 {
				e.initPhase(phaseRelease)
			} else {
				// Sustain holds for as long as the note does; the
				// sample index stays put.
				return e.current
			}
		}

	case phaseRelease:
		if e.sampleIndex > e.sampleLen {
			e.finished = true
			e.current = 0
			return 0
		}
	}

	target := e.phaseValue[e.phase-1]
	if e.sampleLen <= 0 {
		e.current = target
	} else {
		p := float64(e.sampleIndex) / float64(e.sampleLen)
		if !e.phaseShape[e.phase-1] {
			e.current = e.initValue + (target-e.initValue)*p
		} else {
			e.current = e.initValue + (target-e.initValue)*
				math.Log(10*p+1)/math.Log(11)
		}
	}

	e.sampleIndex++

	return e.current
}
