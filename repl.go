package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fjeld/canvas/lang"
	"github.com/fjeld/canvas/synth"
)

type env struct {
	engine   *synth.Synth
	settings *synth.Settings
}

func (e *env) eval(input string) error {
	command, err := lang.Parse(input)
	if err != nil {
		return err
	}
	name := string(command.Name)
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if cmd.arity < 0 {
			arity := -cmd.arity
			if len(command.Args) < arity {
				return fmt.Errorf("%s: wrong number of arguments: need at least %v, got %v",
					cmd.name, arity, len(command.Args))
			}
		} else if len(command.Args) != cmd.arity {
			return fmt.Errorf("%s: wrong number of arguments: want %v, got %v",
				cmd.name, cmd.arity, len(command.Args))
		}
		if err := cmd.run(e, command.Args); err != nil {
			return fmt.Errorf("%s error: %w", cmd.name, err)
		}
		return nil
	}
	return fmt.Errorf("unknown command: %s", name)
}

func repl(env *env) error {
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		if err := env.eval(line); err != nil {
			fmt.Println(err)
		}
	}
}

type command struct {
	name  string
	run   func(*env, []lang.Node) error
	arity int // -n means len(args) must be >= n
}

var commands = []command{
	{"noteon", noteOnCommand, -2},
	{"noteoff", noteOffCommand, 2},
	{"program", programCommand, 2},
	{"set", setCommand, 3},
	{"sys", sysCommand, 2},
	{"drum", drumCommand, 4},
	{"bend", bendCommand, 2},
	{"panic", panicCommand, 0},
}

var patchParams = map[string]synth.PatchParam{
	"tone":       synth.ToneNumber,
	"rhythm":     synth.UseForRhythm,
	"coarse":     synth.PitchCoarseTune,
	"keyshift":   synth.PitchKeyShift,
	"finetune":   synth.PitchFineTune,
	"offsetfine": synth.PitchOffsetFine,
	"bendrange":  synth.PitchBendRange,
	"amp":        synth.AccAmplitudeControl,
	"envattack":  synth.TVFAEnvAttack,
	"envdecay":   synth.TVFAEnvDecay,
	"envrelease": synth.TVFAEnvRelease,
	"vibrate":    synth.VibratoRate,
	"vibdepth":   synth.VibratoDepth,
	"vibdelay":   synth.VibratoDelay,
}

var systemParams = map[string]synth.SystemParam{
	"tune":     synth.SystemTune,
	"keyshift": synth.SystemKeyShift,
}

var drumParams = map[string]synth.DrumParam{
	"key":       synth.DrumPlayKeyNumber,
	"level":     synth.DrumLevel,
	"pan":       synth.DrumPanpot,
	"rxnoteoff": synth.DrumRxNoteOff,
}

func noteOnCommand(env *env, args []lang.Node) error {
	var part, key int
	if err := readArgs(args[:2], &part, &key); err != nil {
		return err
	}
	velocity := 100
	if len(args) > 2 {
		if err := readArgs(args[2:], &velocity); err != nil {
			return err
		}
	}
	env.engine.NoteOn(part, key, velocity)
	return nil
}

func noteOffCommand(env *env, args []lang.Node) error {
	var part, key int
	if err := readArgs(args, &part, &key); err != nil {
		return err
	}
	env.engine.NoteOff(part, key)
	return nil
}

func programCommand(env *env, args []lang.Node) error {
	var part, program int
	if err := readArgs(args, &part, &program); err != nil {
		return err
	}
	env.settings.SetPatch(synth.ToneNumber, part, program)
	return nil
}

func setCommand(env *env, args []lang.Node) error {
	var part int
	var name string
	var value int
	if err := readArgs(args, &part, &name, &value); err != nil {
		return err
	}
	param, ok := patchParams[name]
	if !ok {
		return fmt.Errorf("unknown patch parameter: %s", name)
	}
	env.settings.SetPatch(param, part, value)
	return nil
}

func sysCommand(env *env, args []lang.Node) error {
	var name string
	var value int
	if err := readArgs(args, &name, &value); err != nil {
		return err
	}
	param, ok := systemParams[name]
	if !ok {
		return fmt.Errorf("unknown system parameter: %s", name)
	}
	env.settings.SetSystem(param, value)
	return nil
}

func drumCommand(env *env, args []lang.Node) error {
	var drumMap, key int
	var name string
	var value int
	if err := readArgs(args, &drumMap, &key, &name, &value); err != nil {
		return err
	}
	param, ok := drumParams[name]
	if !ok {
		return fmt.Errorf("unknown drum parameter: %s", name)
	}
	env.settings.SetDrum(param, drumMap, key, value)
	return nil
}

func bendCommand(env *env, args []lang.Node) error {
	var part, value int
	if err := readArgs(args, &part, &value); err != nil {
		return err
	}
	env.settings.SetPitchBend(part, value)
	return nil
}

func panicCommand(env *env, args []lang.Node) error {
	env.engine.AllNotesOff()
	return nil
}

func readArgs(args []lang.Node, slots ...interface{}) error {
	if len(args) != len(slots) {
		return errors.New("wrong number of arguments")
	}
	for n, arg := range args {
		dest := slots[n]
		switch p := dest.(type) {
		case *string:
			switch s := arg.(type) {
			case lang.String:
				*p = string(s)
			case lang.Identifier:
				*p = string(s)
			default:
				return fmt.Errorf("argument error: expected a string or identifier")
			}
		case *float64:
			f, ok := arg.(lang.Float)
			if !ok {
				return fmt.Errorf("argument error: expected a number")
			}
			*p = float64(f)
		case *int:
			i, ok := arg.(lang.Int)
			if !ok {
				return fmt.Errorf("argument error: expected a number")
			}
			*p = int(i)
		default:
			panic("readArgs: unhandled destination type: " + fmt.Sprint(p))
		}
	}
	return nil
}
