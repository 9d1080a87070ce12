package main

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/fjeld/canvas/synth"
)

// listenMIDI attaches the engine to a MIDI input port. Channel n drives
// part n. The returned function detaches the listener.
func listenMIDI(portName string, engine *synth.Synth) (func(), error) {
	in, err := midi.FindInPort(portName)
	if err != nil {
		return nil, fmt.Errorf("midi: %w", err)
	}

	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		var ch, key, vel, program uint8
		var rel int16
		var abs uint16
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			engine.NoteOn(int(ch), int(key), int(vel))
		case msg.GetNoteEnd(&ch, &key):
			engine.NoteOff(int(ch), int(key))
		case msg.GetPitchBend(&ch, &rel, &abs):
			engine.Settings().SetPitchBend(int(ch), int(abs))
		case msg.GetProgramChange(&ch, &program):
			engine.Settings().SetPatch(synth.ToneNumber, int(ch), int(program))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("midi: %w", err)
	}
	return stop, nil
}
