package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/flightpid/internal/control"
	"github.com/san-kum/flightpid/internal/replay"
)

const (
	metadataFile = "metadata.json"
	ticksFile    = "ticks.csv"
)

// ErrNoTicks indicates a result with nothing to store.
var ErrNoTicks = errors.New("flightpid: run has no ticks")

// Header names the ticks.csv columns, in Tick.Record order.
var Header = []string{
	"time", "altitude", "climb_rate", "roll_rate", "pitch_rate", "yaw_rate",
	"in_throttle", "in_roll", "in_pitch", "in_yaw",
	"out_throttle", "out_roll", "out_pitch", "out_yaw",
	"kind", "error_integral", "in_band",
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Kind      string             `json:"kind"`
	Preset    string             `json:"preset,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Ticks     int                `json:"ticks"`
	Gains     control.Gains      `json:"gains"`
	Metrics   map[string]float64 `json:"metrics"`
	// NonFinite lists metrics that came out NaN or Inf and were left out
	// of Metrics.
	NonFinite []string `json:"non_finite,omitempty"`
	Errors    int      `json:"errors"`
}

// Tick is one row of a stored run.
type Tick struct {
	Time          float64
	Altitude      float64
	ClimbRate     float64
	RollRate      float64
	PitchRate     float64
	YawRate       float64
	In            [4]float64
	Out           [4]float64
	Kind          string
	ErrorIntegral float64
	InBand        bool
}

func (s *Store) Save(result *replay.Result, preset string, gains control.Gains) (string, error) {
	if len(result.Samples) == 0 {
		return "", ErrNoTicks
	}

	name := result.Scenario
	if name == "" {
		name = "run"
	}
	runID := fmt.Sprintf("%s_%s", name, uuid.NewString()[:8])

	meta := RunMetadata{
		ID:        runID,
		Scenario:  result.Scenario,
		Kind:      result.Kind.String(),
		Preset:    preset,
		Timestamp: time.Now(),
		Dt:        result.Dt,
		Ticks:     len(result.Samples),
		Gains:     gains,
		Metrics:   make(map[string]float64, len(result.Metrics)),
		Errors:    len(result.Errors),
	}
	for k, v := range result.Metrics {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			meta.NonFinite = append(meta.NonFinite, k)
			continue
		}
		meta.Metrics[k] = v
	}
	sort.Strings(meta.NonFinite)

	// encode before touching disk so a bad run leaves no directory behind
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}

	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, metadataFile), append(data, '\n'), 0644); err != nil {
		return "", err
	}
	if err := writeTicks(filepath.Join(runDir, ticksFile), result.Samples); err != nil {
		return "", err
	}
	return runID, nil
}

func writeTicks(path string, samples []replay.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return err
	}

	for _, s := range samples {
		if err := w.Write(tickFromSample(s).Record()); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func tickFromSample(s replay.Sample) Tick {
	t := Tick{
		Time:      s.Time,
		Altitude:  s.State.Altitude,
		ClimbRate: s.State.ClimbRate,
		RollRate:  s.State.RollRate,
		PitchRate: s.State.PitchRate,
		YawRate:   s.State.YawRate,
		In:        [4]float64{s.Input.Throttle, s.Input.Roll, s.Input.Pitch, s.Input.Yaw},
		Out:       [4]float64{s.Output.Throttle, s.Output.Roll, s.Output.Pitch, s.Output.Yaw},
		Kind:      s.Controller.Kind.String(),
	}
	if s.Controller.Kind == control.KindAltitude {
		t.ErrorIntegral = s.Controller.Altitude.ErrorIntegral
		t.InBand = s.Controller.Altitude.InBand
	}
	return t
}

// Record formats t as a ticks.csv row.
func (t Tick) Record() []string {
	row := make([]string, 0, len(Header))
	row = append(row, ff(t.Time), ff(t.Altitude), ff(t.ClimbRate), ff(t.RollRate), ff(t.PitchRate), ff(t.YawRate))
	for _, v := range t.In {
		row = append(row, ff(v))
	}
	for _, v := range t.Out {
		row = append(row, ff(v))
	}
	return append(row, t.Kind, ff(t.ErrorIntegral), strconv.FormatBool(t.InBand))
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTicks(runID string) ([]Tick, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, ticksFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(Header)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Tick{}, nil
	}

	ticks := make([]Tick, 0, len(records)-1)
	for i, rec := range records[1:] {
		vals := make([]float64, 14)
		for j := range vals {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, %s: %w", i+1, Header[j], err)
			}
			vals[j] = v
		}
		integral, err := strconv.ParseFloat(rec[15], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d, error_integral: %w", i+1, err)
		}
		inBand, err := strconv.ParseBool(rec[16])
		if err != nil {
			return nil, fmt.Errorf("row %d, in_band: %w", i+1, err)
		}

		ticks = append(ticks, Tick{
			Time:          vals[0],
			Altitude:      vals[1],
			ClimbRate:     vals[2],
			RollRate:      vals[3],
			PitchRate:     vals[4],
			YawRate:       vals[5],
			In:            [4]float64{vals[6], vals[7], vals[8], vals[9]},
			Out:           [4]float64{vals[10], vals[11], vals[12], vals[13]},
			Kind:          rec[14],
			ErrorIntegral: integral,
			InBand:        inBand,
		})
	}
	return ticks, nil
}
