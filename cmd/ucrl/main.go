// Command ucrl runs UCRL, SCAL or SCAL+ on a finite environment for a
// number of independent, seeded runs and saves the tracked regret,
// episode data and agent snapshots of every run.
//
// Usage:
//
//	ucrl -config experiment.yaml -out results
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/logrusorgru/aurora"
	"github.com/samuelfneumann/ucrl/agent/ucrl"
	"github.com/samuelfneumann/ucrl/environment"
	"github.com/samuelfneumann/ucrl/experiment"
	"github.com/samuelfneumann/ucrl/experiment/checkpointer"
	"github.com/samuelfneumann/ucrl/experiment/tracker"
	"github.com/samuelfneumann/ucrl/timestep"
	"github.com/samuelfneumann/ucrl/utils/progressbar"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configFile := flag.String("config", "experiment.yaml",
		"experiment configuration file (YAML or JSON)")
	out := flag.String("out", "results", "folder to save results in")
	runs := flag.Int("runs", 0, "number of runs, overrides the configuration")
	steps := flag.Int("steps", 0, "steps per run, overrides the configuration")
	parallel := flag.Int("parallel", runtime.NumCPU(),
		"maximum number of runs executed at once")
	debug := flag.Bool("debug", false, "log at debug level")
	noColour := flag.Bool("no-colour", false, "disable coloured output")
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	config, err := experiment.LoadConfig(*configFile)
	if err != nil {
		logger.Fatal("could not load configuration", zap.Error(err))
	}
	if *runs > 0 {
		config.Runs = *runs
	}
	if *steps > 0 {
		config.MaxSteps = *steps
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		logger.Fatal("could not create output folder", zap.Error(err))
	}

	bar := progressbar.NewManualProgressBar(40, config.Runs*config.MaxSteps,
		os.Stderr)
	ctx, cancel := context.WithCancel(context.Background())
	displayed := display(ctx, bar, time.Second)

	au := aurora.NewAurora(!*noColour)
	statuses := make([]string, config.Runs)

	g := new(errgroup.Group)
	g.SetLimit(*parallel)
	for i := 0; i < config.Runs; i++ {
		i := i
		g.Go(func() error {
			status, err := run(config, i, *out, bar, au,
				logger.With(zap.Int("run", i)))
			statuses[i] = status
			return err
		})
	}
	err = g.Wait()

	cancel()
	<-displayed
	fmt.Fprintln(os.Stderr)

	for _, status := range statuses {
		if status != "" {
			fmt.Println(status)
		}
	}
	if err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}
}

// run executes run i of the experiment, saving its data in
// <out>/run_<i>. The final snapshot of the agent is saved as
// <out>/run_<i>.gob, or as <out>/exception_model_<i>.gob if planning
// diverged. The returned string describes the run.
func run(config experiment.Config, i int, out string,
	bar *progressbar.ManualProgressBar, au aurora.Aurora,
	logger *zap.Logger) (string, error) {
	dir := filepath.Join(out, fmt.Sprintf("run_%d", i))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("run %v: %w", i, err)
	}

	exp, err := config.CreateExp(i, logger, nil, nil)
	if err != nil {
		return "", fmt.Errorf("run %v: %w", i, err)
	}
	online, ok := exp.(*experiment.Online)
	if !ok {
		return "", fmt.Errorf("run %v: unsupported experiment %T", i, exp)
	}
	agent, ok := online.Agent.(*ucrl.Controller)
	if !ok {
		return "", fmt.Errorf("run %v: unsupported agent %T", i, online.Agent)
	}

	gain := 0.0
	if opt, ok := online.Environment.(environment.Optimal); ok {
		if gain, err = opt.MaxGain(); err != nil {
			return "", fmt.Errorf("run %v: %w", i, err)
		}
	}
	interval := 1000
	if c, ok := config.AgentConf.Config.(*ucrl.Config); ok {
		interval = c.RegretTimeSteps
	}

	regret, err := tracker.NewRegret(filepath.Join(dir, "regret.bin"), gain,
		interval)
	if err != nil {
		return "", fmt.Errorf("run %v: %w", i, err)
	}
	exp.Register(regret)
	exp.Register(tracker.NewEpisodeLength(filepath.Join(dir,
		"episode_length.bin")))
	exp.Register(tracker.NewReturn(filepath.Join(dir, "episode_return.bin")))
	exp.Register(progress{bar})

	if config.CheckpointSteps > 0 {
		check, err := checkpointer.NewNStep(config.CheckpointSteps, agent,
			checkpointer.StepFilename(dir, "snapshot_", ".gob"))
		if err != nil {
			return "", fmt.Errorf("run %v: %w", i, err)
		}
		agent.AddCheckpointer(check)
	}

	logger.Info("starting run",
		zap.Uint64("seed", config.RunSeed(i)),
		zap.Stringer("strategy", agent.Strategy()),
		zap.String("environment", fmt.Sprint(online.Environment)),
		zap.Float64("referenceGain", gain))

	outcome, err := exp.Run()
	if err != nil {
		return au.Red(fmt.Sprintf("run %v: failed: %v", i, err)).String(), err
	}

	name := fmt.Sprintf("run_%d.gob", i)
	if outcome.Diverged {
		name = fmt.Sprintf("exception_model_%d.gob", i)
		bar.Add(config.MaxSteps - outcome.Steps)
	}
	if err := exp.Save(); err != nil {
		return "", fmt.Errorf("run %v: %w", i, err)
	}
	if err := agent.Save(filepath.Join(out, name)); err != nil {
		return "", fmt.Errorf("run %v: %w", i, err)
	}

	session := agent.Session()
	mean, std := regret.Summary()
	logger.Info("run finished",
		zap.Int("steps", session.T),
		zap.Int("episodes", session.Episode),
		zap.Float64("regret", session.Regret),
		zap.Float64("regretIncrementMean", mean),
		zap.Float64("regretIncrementStd", std))

	summary := fmt.Sprintf("run %v: %v steps, %v episodes, regret %.2f, "+
		"average reward %.4f (optimal %.4f)", i, session.T, session.Episode,
		session.Regret, regret.AverageReward(), gain)
	if outcome.Diverged {
		logger.Warn("planning diverged", zap.Error(outcome.Divergence))
		return au.Yellow(summary + ": planning diverged").String(), nil
	}
	return au.Green(summary).String(), nil
}

// progress is a Tracker which advances a progress bar
type progress struct {
	bar *progressbar.ManualProgressBar
}

func (p progress) Track(timestep.TimeStep) { p.bar.Increment() }

func (p progress) Save() error { return nil }

// display redraws the progress bar every period until ctx is done. The
// returned channel is closed once the bar has been drawn for the last
// time.
func display(ctx context.Context, bar *progressbar.ManualProgressBar,
	period time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			bar.Display()
			select {
			case <-ctx.Done():
				bar.Display()
				return
			case <-ticker.C:
			}
		}
	}()
	return done
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"ucrl.log"}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("could not create logger: %w", err)
	}
	return logger, nil
}
