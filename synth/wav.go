package synth

import (
	"io"
	"os"

	wav "github.com/youpy/go-wav"
)

// LoadSample reads a WAV file into a PCM vector plus a control record
// shaped like a ROM sample entry. Multi-channel files are read from the
// first channel. The returned record is a one-shot (forward-stop) sample
// rooted at rootKey; callers wanting a sustained sample adjust LoopMode
// and LoopLen before registering it.
func LoadSample(path string, rootKey int) ([]float32, Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Sample{}, err
	}
	defer f.Close()

	var buf []float32
	r := wav.NewReader(f)
	for {
		samples, err := r.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, Sample{}, err
		}
		for _, sample := range samples {
			buf = append(buf, float32(r.FloatValue(sample, 0)))
		}
	}

	ctrl := Sample{
		Pitch:      1024,
		RootKey:    rootKey,
		Volume:     0x7f,
		FineVolume: 1024,
		LoopMode:   LoopStop,
		LoopLen:    0,
		SampleLen:  len(buf),
	}
	return buf, ctrl, nil
}
