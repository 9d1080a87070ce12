package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fjeld/canvas/synth"
)

// firstDrumKey is where imported sounds land on the drum part, matching
// the bottom of the GM percussion map.
const firstDrumKey = 35

func main() {
	var (
		rate     = flag.Int("rate", 44100, "output sample rate")
		sounds   = flag.String("sounds", "*.wav", "glob of samples to load into the bank")
		midiPort = flag.String("midi", "", "MIDI input port name")
		run      = flag.String("run", "", "command script to run at startup")
	)
	flag.Parse()

	files, err := filepath.Glob(*sounds)
	if err != nil {
		log.Fatal(err)
	}
	if len(files) == 0 {
		log.Fatalf("no samples match %q", *sounds)
	}

	rom, pcm, err := buildBank(files)
	if err != nil {
		log.Fatal(err)
	}

	settings := synth.NewSettings(*rate)
	settings.SetPatch(synth.UseForRhythm, 9, 1)

	engine := synth.New(rom, pcm, settings)

	sink, err := synth.NewSink(*rate)
	if err != nil {
		log.Fatal(err)
	}
	defer sink.Stop()
	sink.AddSources(engine)
	if err := sink.Start(); err != nil {
		log.Fatal(err)
	}

	if *midiPort != "" {
		stop, err := listenMIDI(*midiPort, engine)
		if err != nil {
			log.Fatal(err)
		}
		defer stop()
	}

	env := &env{engine: engine, settings: settings}

	if *run != "" {
		f, err := os.Open(*run)
		if err != nil {
			log.Fatal(err)
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if err := env.eval(line); err != nil {
				log.Fatal(err)
			}
		}
		f.Close()
		if err := scanner.Err(); err != nil {
			log.Fatal(err)
		}
	}

	if err := repl(env); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// buildBank assembles an in-memory ROM pair from WAV files: one
// instrument per file, playable melodically by program number and mapped
// onto the drum part from firstDrumKey upward.
func buildBank(files []string) (*synth.ControlRom, *synth.PcmRom, error) {
	rom := synth.NewControlRom(synth.GenSC55mk2)
	pcm := synth.NewPcmRom()
	drums := synth.UnusedDrumSet("imported")

	for i, file := range files {
		buf, ctrl, err := synth.LoadSample(file, 60)
		if err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", file, err)
		}
		sampleIndex := rom.AddSample(ctrl)
		pcm.AddSamples(buf)

		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		pd := synth.PartialDef{Name: name}
		pd.Breaks[0] = 0x7f
		pd.Samples[0] = sampleIndex
		for j := 1; j < 16; j++ {
			pd.Samples[j] = 0xffff
		}
		partialIndex := rom.AddPartial(pd)

		inst := synth.Instrument{Name: name}
		inst.Partials[0] = defaultInstPartial(partialIndex)
		inst.Partials[1].PartialIndex = 0xffff
		instIndex := rom.AddInstrument(inst)

		if key := firstDrumKey + i; key < 128 {
			drums.Instrument[key] = uint16(instIndex)
		}
	}
	rom.AddDrumSet(drums)
	return rom, pcm, nil
}

// defaultInstPartial fills an instrument partial with neutral tuning and a
// sustaining amplitude envelope; one-shot samples end on their own through
// the forward-stop cursor.
func defaultInstPartial(partialIndex uint16) synth.InstPartial {
	ip := synth.InstPartial{
		PartialIndex: partialIndex,
		CoarsePitch:  0x40,
		FinePitch:    0x40,
		PitchKeyFlw:  0x4a,
		Volume:       0x7f,
		Panpot:       0x40,
	}
	for i := range ip.PitchEnv.Level {
		ip.PitchEnv.Level[i] = 0x40
	}
	ip.TVAEnv.Level = [5]uint8{0x7f, 0x7f, 0x7f, 0x7f, 0}
	ip.TVAEnv.Duration = [5]uint8{0, 0, 0, 0x7f, 10}
	return ip
}
