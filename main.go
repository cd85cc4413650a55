package main

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/re3/environment/envconfig"
	"github.com/samuelfneumann/re3/experiment"
	"github.com/samuelfneumann/re3/experiment/tracker"
	"github.com/samuelfneumann/re3/experiment/trackers"
	"github.com/samuelfneumann/re3/re3"
	"github.com/samuelfneumann/re3/utils/matutils"
	"github.com/samuelfneumann/re3/utils/progressbar"
)

func main() {
	configFile := flag.String("config", "", "JSON experiment configuration")
	envName := flag.String("env", "cartpole", "Observation source "+
		"(e.g., 'cartpole', 'pixels', 'puck', 'puck-pixels')")
	instances := flag.Int("envs", 8, "Number of environment instances N")
	steps := flag.Int("steps", 128, "Time steps T per rollout")
	rollouts := flag.Int("rollouts", 10, "Number of rollouts")
	seed := flag.Uint64("seed", 1, "Seed for environments and policies")
	verbose := flag.Bool("v", false, "Log at debug level")
	saveDir := flag.String("save", "", "Directory to save episode "+
		"returns and lengths of instance 0 to")
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	re3.SetLogger(log)

	config, err := loadConfig(*configFile)
	if err != nil {
		log.Fatal(err)
	}

	// Flags override the configuration file when set explicitly, and
	// replace the defaults when no file is given
	if *configFile == "" {
		if err := setSource(&config.EnvConf, *envName); err != nil {
			log.Fatal(err)
		}
		config.Instances, config.Steps = *instances, *steps
		config.Rollouts = *rollouts
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "env":
			if err := setSource(&config.EnvConf, *envName); err != nil {
				log.Fatal(err)
			}
		case "envs":
			config.Instances = *instances
		case "steps":
			config.Steps = *steps
		case "rollouts":
			config.Rollouts = *rollouts
		}
	})

	exp, err := config.CreateExp(*seed)
	if err != nil {
		log.Fatal(err)
	}
	online, ok := exp.(*experiment.Online)
	if !ok {
		log.Fatalf("unsupported experiment type %v", config.Type)
	}
	online.SetLogger(log)

	if *saveDir != "" {
		returns := trackers.NewReturn(filepath.Join(*saveDir, "return.bin"))
		lengths := trackers.NewEpisodeLength(filepath.Join(*saveDir,
			"length.bin"))
		if err := exp.Register(0, returns); err != nil {
			log.Fatal(err)
		}
		if err := exp.Register(0, lengths); err != nil {
			log.Fatal(err)
		}
	}

	bar := progressbar.NewManualProgressBar(os.Stdout, 40, config.Rollouts)
	for !online.Done() {
		if _, err := online.RunRollout(); err != nil {
			log.Fatal(err)
		}
		bar.Increment()
		if !*verbose {
			bar.Display()
		}
	}
	bar.Close()

	if *saveDir != "" {
		if err := exp.Save(); err != nil {
			log.Fatal(err)
		}
		for _, name := range []string{"return.bin", "length.bin"} {
			if err := logSaved(log, filepath.Join(*saveDir, name)); err != nil {
				log.Fatal(err)
			}
		}
	}
}

// logSaved reads back the data saved by a tracker and logs its summary
func logSaved(log logrus.FieldLogger, filename string) error {
	data, err := tracker.LoadData(filename)
	if err != nil {
		return errors.Wrap(err, "logSaved")
	}
	if len(data) == 0 {
		log.WithField("file", filename).Info("no finished episodes saved")
		return nil
	}

	s := matutils.Summarize(mat.NewVecDense(len(data), data))
	log.WithFields(logrus.Fields{
		"file":     filename,
		"episodes": len(data),
		"mean":     s.Mean,
		"min":      s.Min,
		"max":      s.Max,
	}).Info("saved episode data")
	return nil
}

// setSource configures the environment producing observations from
// the name given on the command line
func setSource(c *envconfig.Config, name string) error {
	switch name {
	case "cartpole", "pixels":
		c.Environment, c.Task = envconfig.Cartpole, envconfig.Balance
	case "puck", "puck-pixels":
		c.Environment, c.Task = envconfig.Puck, envconfig.Reach
	default:
		return errors.Errorf("setSource: unknown environment %q", name)
	}
	c.Pixels = name == "pixels" || name == "puck-pixels"
	return nil
}

// loadConfig loads an experiment configuration from a JSON file, or
// returns the default configuration if filename is empty
func loadConfig(filename string) (experiment.Config, error) {
	if filename == "" {
		return defaultConfig(), nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return experiment.Config{}, errors.Wrap(err, "loadConfig")
	}

	config := defaultConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return experiment.Config{}, errors.Wrapf(err, "loadConfig: could not "+
			"decode %v", filename)
	}
	return config, nil
}

// defaultConfig returns the default experiment configuration
func defaultConfig() experiment.Config {
	return experiment.Config{
		Type:      experiment.OnlineExp,
		Rollouts:  10,
		Steps:     128,
		Instances: 8,
		EnvConf: envconfig.NewConfig(envconfig.Cartpole, envconfig.Balance,
			false, 500, 0.99, false),
		RE3Conf: re3.NewConfig(128, 0.05, 1e-5),
	}
}
