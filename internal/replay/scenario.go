package replay

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/flightpid/internal/control"
	"github.com/san-kum/flightpid/internal/flight"
)

// Scenario defines a scripted trace. Target, when set, is the altitude
// setpoint for every altitude engagement; otherwise each engagement holds
// the altitude it starts at.
type Scenario struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Kind        string    `yaml:"kind"`
	Preset      string    `yaml:"preset"`
	Target      *float64  `yaml:"target"`
	Segments    []Segment `yaml:"segments"`
}

// Segment interpolates every channel from its start to its end value over
// Duration seconds. ClimbRate defaults to the altitude slope when unset.
type Segment struct {
	Duration  float64 `yaml:"duration"`
	Engage    string  `yaml:"engage"`
	Altitude  Ramp    `yaml:"altitude"`
	ClimbRate *Ramp   `yaml:"climb_rate"`
	RollRate  Ramp    `yaml:"roll_rate"`
	PitchRate Ramp    `yaml:"pitch_rate"`
	YawRate   Ramp    `yaml:"yaw_rate"`
	Throttle  Ramp    `yaml:"throttle"`
	Roll      Ramp    `yaml:"roll"`
	Pitch     Ramp    `yaml:"pitch"`
	Yaw       Ramp    `yaml:"yaw"`
}

// Ramp is a linear ramp. In YAML it is either a scalar (constant) or a
// mapping with from/to.
type Ramp struct {
	From float64 `yaml:"from"`
	To   float64 `yaml:"to"`
}

func (r *Ramp) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var v float64
		if err := node.Decode(&v); err != nil {
			return err
		}
		r.From, r.To = v, v
		return nil
	}
	type plain Ramp
	return node.Decode((*plain)(r))
}

func (r Ramp) At(frac float64) float64 {
	return r.From + (r.To-r.From)*frac
}

// Frame is one expanded tick of a scenario.
type Frame struct {
	Time    float64
	Segment int
	// Engage is set on the first tick of a segment that switches mode.
	Engage  bool
	Kind    control.Kind
	State   flight.VehicleState
	Demands flight.Demands
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Kind == "" {
		sc.Kind = control.KindAltitude.String()
	}
	return &sc, nil
}

// ControllerKind resolves the scenario's initial kind.
func (s *Scenario) ControllerKind() (control.Kind, error) {
	return control.ParseKind(s.Kind)
}

// Expand samples the scenario every dt seconds.
func (s *Scenario) Expand(dt float64) ([]Frame, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("%w, got %f", ErrInvalidDt, dt)
	}
	kind, err := s.ControllerKind()
	if err != nil {
		return nil, err
	}

	frames := make([]Frame, 0)
	t := 0.0
	for i, seg := range s.Segments {
		n := int(math.Round(seg.Duration / dt))
		if n <= 0 {
			continue
		}

		engage := seg.Engage != ""
		if engage {
			kind, err = control.ParseKind(seg.Engage)
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
		}

		climb := Ramp{From: 0, To: 0}
		if seg.ClimbRate != nil {
			climb = *seg.ClimbRate
		} else if seg.Duration > 0 {
			slope := (seg.Altitude.To - seg.Altitude.From) / seg.Duration
			climb = Ramp{From: slope, To: slope}
		}

		for k := 0; k < n; k++ {
			frac := float64(k) / float64(n)
			frames = append(frames, Frame{
				Time:    t,
				Segment: i,
				Engage:  engage && k == 0,
				Kind:    kind,
				State: flight.VehicleState{
					Altitude:  seg.Altitude.At(frac),
					ClimbRate: climb.At(frac),
					RollRate:  seg.RollRate.At(frac),
					PitchRate: seg.PitchRate.At(frac),
					YawRate:   seg.YawRate.At(frac),
				},
				Demands: flight.Demands{
					Throttle: seg.Throttle.At(frac),
					Roll:     seg.Roll.At(frac),
					Pitch:    seg.Pitch.At(frac),
					Yaw:      seg.Yaw.At(frac),
				},
			})
			t += dt
		}
	}

	if len(frames) == 0 {
		return nil, ErrEmptyScenario
	}
	return frames, nil
}
