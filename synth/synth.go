package synth

import "log"

const maxNotes = 64

// note groups the partials created by one note-on.
type note struct {
	part      int
	key       int
	releasing bool
	partials  [2]*Partial
}

func (n *note) render(frame *[2]float32) bool {
	done := true
	for _, p := range n.partials {
		if p == nil {
			continue
		}
		if !p.GetNextSample(frame) {
			done = false
		}
	}
	return done
}

func (n *note) stop() {
	n.releasing = true
	for _, p := range n.partials {
		if p != nil {
			p.Stop()
		}
	}
}

// Synth is the per-voice tone generator. The control thread creates and
// releases notes through NoteOn/NoteOff, which only push onto a
// single-producer single-consumer queue; the audio thread drains the queue
// at the top of every Process call, so the voice list is touched by one
// goroutine only and the sample path runs without locks.
type Synth struct {
	rom      *ControlRom
	pcm      *PcmRom
	settings *Settings

	events *eventBuffer
	lfos   [NumParts][2]*LFO
	notes  []*note
}

func New(rom *ControlRom, pcm *PcmRom, settings *Settings) *Synth {
	s := &Synth{
		rom:      rom,
		pcm:      pcm,
		settings: settings,
		events:   newEventBuffer(256),
		notes:    make([]*note, 0, maxNotes),
	}
	for part := 0; part < NumParts; part++ {
		s.lfos[part][0] = NewLFO(settings, part)
		s.lfos[part][1] = NewLFO(settings, part)
	}
	return s
}

func (s *Synth) Settings() *Settings { return s.settings }

// NoteOn schedules a note. Safe to call from the control thread only.
func (s *Synth) NoteOn(part, key, velocity int) {
	s.events.push(event{kind: eventNoteOn, part: part, key: key, velocity: velocity})
}

// NoteOff schedules the release of all sounding notes matching part and key.
func (s *Synth) NoteOff(part, key int) {
	s.events.push(event{kind: eventNoteOff, part: part, key: key})
}

// AllNotesOff releases every sounding note.
func (s *Synth) AllNotesOff() {
	s.events.push(event{kind: eventAllNotesOff})
}

// Process renders one buffer of stereo frames, adding into out. This is
// the audio thread entry point.
func (s *Synth) Process(out [][]float32) {
	s.events.drain(s.handle)

	for i := range out[0] {
		for part := range s.lfos {
			s.lfos[part][0].Tick()
			s.lfos[part][1].Tick()
		}

		var frame [2]float32
		live := s.notes[:0]
		for _, n := range s.notes {
			if !n.render(&frame) {
				live = append(live, n)
			}
		}
		s.notes = live

		out[0][i] += frame[0]
		out[1][i] += frame[1]
	}
}

func (s *Synth) handle(ev event) {
	switch ev.kind {
	case eventNoteOn:
		s.noteOn(ev)
	case eventNoteOff:
		for _, n := range s.notes {
			if n.part == ev.part && n.key == ev.key && !n.releasing {
				n.stop()
			}
		}
	case eventAllNotesOff:
		for _, n := range s.notes {
			if !n.releasing {
				n.stop()
			}
		}
	}
}

func (s *Synth) noteOn(ev event) {
	if len(s.notes) >= maxNotes {
		log.Printf("synth: no free voice for key %d on part %d", ev.key, ev.part)
		return
	}

	instIndex := -1
	if rhythm := s.settings.Patch(UseForRhythm, ev.part); rhythm != 0 {
		ds := s.rom.DrumSet(s.settings.Patch(ToneNumber, ev.part))
		if ds == nil {
			log.Printf("synth: part %d references missing drum set", ev.part)
			return
		}
		idx := ds.Instrument[ev.key&0x7f]
		if idx == 0xffff {
			return // unmapped drum key; not an error
		}
		instIndex = int(idx)
	} else {
		instIndex = s.settings.Patch(ToneNumber, ev.part)
	}
	if instIndex < 0 || instIndex >= s.rom.NumInstruments() {
		log.Printf("synth: part %d tone %d out of range", ev.part, instIndex)
		return
	}

	n := &note{part: ev.part, key: ev.key}
	inst := s.rom.Instrument(instIndex)
	for pi := range inst.Partials {
		if inst.Partials[pi].PartialIndex == 0xffff {
			continue
		}
		n.partials[pi] = NewPartial(ev.key, pi, instIndex, s.rom, s.pcm,
			&s.lfos[ev.part], s.settings, ev.part)
	}
	if n.partials[0] == nil && n.partials[1] == nil {
		return
	}
	s.notes = append(s.notes, n)
}
