package synth

import (
	"github.com/gordonklaus/portaudio"
)

// Source renders audio into a pair of channel buffers.
type Source interface {
	Process([][]float32)
}

const bufferSize = 512

// Sink owns the portaudio stream and fans the host's pull out to its
// sources, zeroing the buffers first so sources can accumulate.
type Sink struct {
	sources []Source
	stream  *portaudio.Stream
}

func NewSink(sampleRate int) (*Sink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	var s Sink
	stream, err := portaudio.OpenDefaultStream(0, 2, float64(sampleRate), bufferSize, s.Process)
	if err != nil {
		return nil, err
	}
	s.stream = stream
	return &s, nil
}

func (s *Sink) Start() error {
	return s.stream.Start()
}

func (s *Sink) Stop() error {
	s.stream.Close()
	portaudio.Terminate()
	return nil
}

func (s *Sink) AddSources(sources ...Source) {
	s.sources = append(s.sources, sources...)
}

func (s *Sink) Process(samples [][]float32) {
	for i := range samples {
		for j := range samples[i] {
			samples[i][j] = 0.
		}
	}
	for _, source := range s.sources {
		source.Process(samples)
	}
}
