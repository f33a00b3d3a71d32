package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"failureguard/internal/logger"
	"failureguard/internal/models"
)

// ----------- Simulation constants -----------
const (
	DefaultTick         = 2 * time.Second
	DefaultAnomalyAfter = 10 // ticks before the scripted fault starts

	DefaultAnomalyMachine = "PUMP_A"
)

// DefaultMachines is the simulated fleet.
var DefaultMachines = []string{"PUMP_A", "PUMP_B", "MOTOR_C", "COMPRESSOR_D"}

// sensorRange is a uniform range and the decimals kept after sampling.
type sensorRange struct {
	min, max float64
	decimals int
}

var (
	normalTemp      = sensorRange{62, 74, 2}
	normalVibration = sensorRange{1.0, 2.4, 3}
	normalPressure  = sensorRange{3.6, 4.8, 2}

	faultTemp      = sensorRange{82, 95, 2}
	faultVibration = sensorRange{3.2, 4.8, 3}
	faultPressure  = sensorRange{2.0, 3.0, 2}
)

// SimulatorConfig tunes the reading generator.
type SimulatorConfig struct {
	CSVPath        string
	Machines       []string
	Tick           time.Duration
	AnomalyAfter   int // negative selects DefaultAnomalyAfter
	AnomalyMachine string
	Seed           int64 // 0 picks a time-based seed
}

// SimulatorService writes one synthetic row per machine to the sensor CSV
// on every tick. After AnomalyAfter ticks AnomalyMachine drifts out of its
// operating envelope.
type SimulatorService struct {
	cfg SimulatorConfig
	rnd *rand.Rand
	now func() time.Time
	log *logger.Logger
}

// NewSimulatorService returns a simulator with defaults filled in.
func NewSimulatorService(cfg SimulatorConfig, log *logger.Logger) *SimulatorService {
	if len(cfg.Machines) == 0 {
		cfg.Machines = DefaultMachines
	}
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if cfg.AnomalyAfter < 0 {
		cfg.AnomalyAfter = DefaultAnomalyAfter
	}
	if cfg.AnomalyMachine == "" {
		cfg.AnomalyMachine = DefaultAnomalyMachine
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SimulatorService{
		cfg: cfg,
		rnd: rand.New(rand.NewSource(seed)),
		now: time.Now,
		log: log,
	}
}

// Run truncates the CSV, then appends a batch every tick until ctx is canceled.
func (s *SimulatorService) Run(ctx context.Context) error {
	if err := s.Reset(); err != nil {
		return err
	}
	s.log.Infow("simulator_started",
		"csv", s.cfg.CSVPath,
		"machines", s.cfg.Machines,
		"anomaly_machine", s.cfg.AnomalyMachine,
		"anomaly_after_ticks", s.cfg.AnomalyAfter,
	)

	t := time.NewTicker(s.cfg.Tick)
	defer t.Stop()

	tick := 0
	for {
		if err := s.WriteTick(tick); err != nil {
			s.log.Errorw("simulator_write_failed", "err", err, "tick", tick)
		} else {
			s.log.Debugw("simulator_tick", "tick", tick)
		}
		tick++

		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

// Reset recreates the CSV holding only the header row.
func (s *SimulatorService) Reset() error {
	if err := os.MkdirAll(filepath.Dir(s.cfg.CSVPath), 0o755); err != nil {
		return fmt.Errorf("create csv dir: %w", err)
	}
	f, err := os.Create(s.cfg.CSVPath)
	if err != nil {
		return fmt.Errorf("create sensor csv: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		_ = f.Close()
		return fmt.Errorf("write csv header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush csv header: %w", err)
	}
	return f.Close()
}

// WriteTick appends one row per machine.
func (s *SimulatorService) WriteTick(tick int) error {
	f, err := os.OpenFile(s.cfg.CSVPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open sensor csv: %w", err)
	}
	w := csv.NewWriter(f)
	for _, m := range s.cfg.Machines {
		if err := w.Write(formatRow(s.Generate(m, tick))); err != nil {
			_ = f.Close()
			return fmt.Errorf("write row for %s: %w", m, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush rows: %w", err)
	}
	return f.Close()
}

// Generate samples one reading for machine at tick.
func (s *SimulatorService) Generate(machine string, tick int) models.RawReading {
	temp, vib, pres := normalTemp, normalVibration, normalPressure
	if machine == s.cfg.AnomalyMachine && tick > s.cfg.AnomalyAfter {
		temp, vib, pres = faultTemp, faultVibration, faultPressure
	}
	return models.RawReading{
		MachineID:   machine,
		Timestamp:   s.now().Format(models.TimestampLayout),
		Temperature: s.sample(temp),
		Vibration:   s.sample(vib),
		Pressure:    s.sample(pres),
	}
}

func (s *SimulatorService) sample(r sensorRange) float64 {
	v := r.min + s.rnd.Float64()*(r.max-r.min)
	p := math.Pow(10, float64(r.decimals))
	return math.Round(v*p) / p
}
