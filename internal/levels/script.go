package levels

import (
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// ScriptFile is a keyframed saturation/value timeline.
//
// Time is expressed as Go duration strings (e.g. "0s", "250ms", "10s").
// If Duration is zero, it is derived from the latest keyframe time.
//
// YAML schema (v1):
//
//	version: 1
//	duration: 30s
//	loop: true
//	keyframes:
//	  - t: 0s
//	    saturation: 200
//	    value: 255
//	  - t: 10s
//	    saturation: 255
//	    value: 64
//
// Keyframes must be sorted by time with non-decreasing t values.
type ScriptFile struct {
	Version   int           `yaml:"version"`
	Duration  time.Duration `yaml:"duration"`
	Loop      bool          `yaml:"loop"`
	Keyframes []Keyframe    `yaml:"keyframes"`
}

// Keyframe is a time-stamped saturation/value pair.
type Keyframe struct {
	T          time.Duration `yaml:"t"`
	Saturation uint8         `yaml:"saturation"`
	Value      uint8         `yaml:"value"`
}

// Script is the validated, runtime representation.
type Script struct {
	file     ScriptFile
	duration time.Duration
}

// Load reads and parses a YAML script from path.
func Load(path string) (ScriptFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ScriptFile{}, err
	}
	return Parse(b)
}

// Parse parses a YAML script.
func Parse(b []byte) (ScriptFile, error) {
	var f ScriptFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return ScriptFile{}, err
	}
	return f, nil
}

// New validates f and returns a runtime Script.
func New(f ScriptFile) (*Script, error) {
	if f.Version == 0 {
		f.Version = 1
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported levels script version %d", f.Version)
	}
	if len(f.Keyframes) == 0 {
		return nil, fmt.Errorf("keyframes is required")
	}
	for i := range f.Keyframes {
		if f.Keyframes[i].T < 0 {
			return nil, fmt.Errorf("keyframes[%d].t must be >= 0", i)
		}
		if i > 0 && f.Keyframes[i].T < f.Keyframes[i-1].T {
			return nil, fmt.Errorf("keyframes must be sorted by t (index %d)", i)
		}
	}

	dur := f.Duration
	if dur <= 0 {
		dur = f.Keyframes[len(f.Keyframes)-1].T
	}
	if dur <= 0 && len(f.Keyframes) > 1 {
		return nil, fmt.Errorf("duration is required (or deriveable from keyframes)")
	}
	return &Script{file: f, duration: dur}, nil
}

// Duration returns the effective script duration.
func (s *Script) Duration() time.Duration {
	if s == nil {
		return 0
	}
	return s.duration
}

// LevelsAt returns saturation and value at elapsed.
//
// If the script loops, elapsed wraps around Duration(). Otherwise it is
// clamped to [0, Duration()].
func (s *Script) LevelsAt(elapsed time.Duration) (sat, val uint8) {
	if s == nil {
		return 0, 0
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if s.duration > 0 {
		if s.file.Loop {
			elapsed = elapsed % s.duration
		} else if elapsed > s.duration {
			elapsed = s.duration
		}
	}

	k0, k1, alpha := selectSegment(s.file.Keyframes, elapsed)
	return lerp8(k0.Saturation, k1.Saturation, alpha), lerp8(k0.Value, k1.Value, alpha)
}

func selectSegment(kfs []Keyframe, t time.Duration) (Keyframe, Keyframe, float64) {
	if len(kfs) == 1 {
		return kfs[0], kfs[0], 0
	}
	idx := sort.Search(len(kfs), func(i int) bool { return kfs[i].T > t })
	if idx <= 0 {
		return kfs[0], kfs[0], 0
	}
	if idx >= len(kfs) {
		last := kfs[len(kfs)-1]
		return last, last, 0
	}
	k0 := kfs[idx-1]
	k1 := kfs[idx]
	dt := k1.T - k0.T
	if dt <= 0 {
		return k1, k1, 0
	}
	alpha := float64(t-k0.T) / float64(dt)
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return k0, k1, alpha
}

func lerp8(a, b uint8, t float64) uint8 {
	v := math.Round(float64(a) + (float64(b)-float64(a))*t)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
