package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

var ErrNotEnoughSamples = errors.New("average service time requires at least two iterations")

type Benchmark struct {
	Input       string
	Iterations  int
	Warmup      int
	ClearCaches bool
	Functions   []Func
	Clock       Clock
	Logger      *zap.SugaredLogger
}

// Timings are the raw clock readings of a single run.
type Timings struct {
	Start time.Time
	Ready time.Time
	Stop  time.Time
	Times []time.Time
}

type Summary struct {
	Completion        time.Duration
	Initialization    time.Duration
	Computation       time.Duration
	AverageService    time.Duration
	HasAverageService bool
}

// dropCachesCmds flush dirty pages and then drop the page cache.
var dropCachesCmds = map[string][][]string{
	"linux": {
		{"sync"},
		{"sh", "-c", "echo 3 | sudo -n tee /proc/sys/vm/drop_caches"},
	},
	"darwin": {
		{"sync"},
		{"purge"},
	},
}

func clearCaches() error {
	cmds, ok := dropCachesCmds[runtime.GOOS]
	if !ok {
		return fmt.Errorf("unable to clear caches for platform '%v'", runtime.GOOS)
	}
	for _, args := range cmds {
		if output, err := exec.Command(args[0], args[1:]...).CombinedOutput(); err != nil {
			return fmt.Errorf("%v: err=%w, out=%v", args, err, string(output))
		}
	}
	return nil
}

func (b *Benchmark) clearCachesIfNeeded() error {
	if !b.ClearCaches {
		return nil
	}
	b.Logger.Info("clear caches")
	return clearCaches()
}

// readInput loads the whole file; the handle is closed before it returns.
func readInput(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (b *Benchmark) apply(data string) {
	for _, f := range b.Functions {
		_ = f(data)
	}
}

func (b *Benchmark) warmup() error {
	for i := 0; i < b.Warmup; i++ {
		b.Logger.Infof("running warmup #%v/%v on %v", i+1, b.Warmup, b.Input)
		data, err := readInput(b.Input)
		if err != nil {
			return fmt.Errorf("warmup #%v failed: %w", i, err)
		}
		b.apply(data)
	}
	return nil
}

func (b *Benchmark) validate() error {
	if b.Iterations < 0 {
		return fmt.Errorf("iterations must be non-negative, got %v", b.Iterations)
	}
	if b.Logger == nil {
		b.Logger = zap.NewNop().Sugar()
	}
	if b.Clock == nil {
		b.Clock = SystemClock
	}
	return nil
}

// prepare runs everything that belongs to initialization overhead.
func (b *Benchmark) prepare() error {
	if err := b.warmup(); err != nil {
		return err
	}
	if err := b.clearCachesIfNeeded(); err != nil {
		return fmt.Errorf("failed to clear caches: %w", err)
	}
	return nil
}

// Run executes the measurement loop. start is the reading taken when the
// process began, so Timings.Ready - start covers everything done before the loop.
func (b *Benchmark) Run(start time.Time) (Timings, error) {
	if err := b.validate(); err != nil {
		return Timings{}, err
	}
	timings := Timings{Start: start, Times: make([]time.Time, 0, b.Iterations)}
	if err := b.prepare(); err != nil {
		return Timings{}, err
	}

	timings.Ready = b.Clock.Now()
	for i := 0; i < b.Iterations; i++ {
		data, err := readInput(b.Input)
		if err != nil {
			return Timings{}, fmt.Errorf("iteration #%v failed: %w", i+1, err)
		}
		b.apply(data)
		now := b.Clock.Now()
		timings.Times = append(timings.Times, now)
		b.Logger.Debugf("finished iteration #%v/%v", i+1, b.Iterations)
	}
	timings.Stop = b.Clock.Now()

	if len(timings.Times) > 1 {
		b.logSpread(timings.ServiceTimes())
	}
	return timings, nil
}

func (b *Benchmark) logSpread(serviceTimes []time.Duration) {
	values := make([]float64, len(serviceTimes))
	minimum, maximum := serviceTimes[0], serviceTimes[0]
	for i, d := range serviceTimes {
		values[i] = float64(d)
		minimum, maximum = min(minimum, d), max(maximum, d)
	}
	_, stddev := stat.MeanStdDev(values, nil)
	b.Logger.Debugf(
		"service times: min=%v, max=%v, stddev=%v",
		minimum,
		maximum,
		time.Duration(stddev),
	)
}

// ParallelBenchmark applies every function to every iteration's data on a
// pool of Workers goroutines. The Clock must be safe for concurrent use.
type ParallelBenchmark struct {
	Benchmark
	Workers int
}

// Completion is the moment a single function finished on an iteration's data.
type Completion struct {
	Iteration int
	Time      time.Time
}

type task struct {
	iteration int
	data      string
	f         Func
}

func (p *ParallelBenchmark) Run(ctx context.Context, start time.Time) (Timings, error) {
	if p.Workers < 1 {
		return Timings{}, fmt.Errorf("workers must be positive, got %v", p.Workers)
	}
	if err := p.validate(); err != nil {
		return Timings{}, err
	}
	timings := Timings{Start: start}
	if err := p.prepare(); err != nil {
		return Timings{}, err
	}

	timings.Ready = p.Clock.Now()
	tasks := make(chan task)
	var (
		mu          sync.Mutex
		completions = make([]Completion, 0, p.Iterations*len(p.Functions))
	)
	eg, ctx := errgroup.WithContext(ctx)
	for w := 0; w < p.Workers; w++ {
		eg.Go(func() error {
			for t := range tasks {
				_ = t.f(t.data)
				now := p.Clock.Now()
				mu.Lock()
				completions = append(completions, Completion{Iteration: t.iteration, Time: now})
				mu.Unlock()
			}
			return nil
		})
	}
	eg.Go(func() error {
		defer close(tasks)
		for i := 0; i < p.Iterations; i++ {
			data, err := readInput(p.Input)
			if err != nil {
				return fmt.Errorf("iteration #%v failed: %w", i+1, err)
			}
			for _, f := range p.Functions {
				select {
				case tasks <- task{iteration: i, data: data, f: f}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			p.Logger.Debugf("submitted iteration #%v/%v", i+1, p.Iterations)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return Timings{}, err
	}
	timings.Stop = p.Clock.Now()

	timings.Times = CompletionTimes(completions, p.Iterations)
	if len(timings.Times) > 1 {
		p.logSpread(timings.ServiceTimes())
	}
	return timings, nil
}

// CompletionTimes keeps the latest completion of every iteration and returns
// them in ascending order. Iterations without completions are dropped.
func CompletionTimes(completions []Completion, iterations int) []time.Time {
	latest := make([]time.Time, iterations)
	for _, c := range completions {
		if c.Iteration < 0 || c.Iteration >= iterations {
			continue
		}
		if c.Time.After(latest[c.Iteration]) {
			latest[c.Iteration] = c.Time
		}
	}
	times := make([]time.Time, 0, iterations)
	for _, t := range latest {
		if !t.IsZero() {
			times = append(times, t)
		}
	}
	slices.SortFunc(times, func(a, b time.Time) int { return a.Compare(b) })
	return times
}

// ServiceTimes returns the differences between consecutive iteration timestamps.
func (t Timings) ServiceTimes() []time.Duration {
	if len(t.Times) < 2 {
		return nil
	}
	durations := make([]time.Duration, 0, len(t.Times)-1)
	for i := 1; i < len(t.Times); i++ {
		durations = append(durations, t.Times[i].Sub(t.Times[i-1]))
	}
	return durations
}

func (t Timings) AverageServiceTime() (time.Duration, error) {
	durations := t.ServiceTimes()
	if len(durations) == 0 {
		return 0, ErrNotEnoughSamples
	}
	var total time.Duration
	for _, d := range durations {
		total += d
	}
	return total / time.Duration(len(durations)), nil
}

func (t Timings) Summary() Summary {
	summary := Summary{
		Completion:     t.Stop.Sub(t.Start),
		Initialization: t.Ready.Sub(t.Start),
		Computation:    t.Stop.Sub(t.Ready),
	}
	if average, err := t.AverageServiceTime(); err == nil {
		summary.AverageService = average
		summary.HasAverageService = true
	}
	return summary
}

type reportLine struct {
	label string
	value time.Duration
}

// Report prints the summary; durations are truncated to whole microseconds.
func (s Summary) Report(w io.Writer) error {
	lines := []reportLine{
		{"Completion time", s.Completion},
		{"Initialization overhead", s.Initialization},
		{"Computation time", s.Computation},
	}
	if s.HasAverageService {
		lines = append(lines, reportLine{"Average service time", s.AverageService})
	}
	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "%v: %v\n", line.label, line.value.Microseconds()); err != nil {
			return err
		}
	}
	return nil
}
