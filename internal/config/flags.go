package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagScenario = flag.String("scenario", "", "Scene to simulate (floor, table)")
	flagPath     = flag.String("path", "", "Sensor path name")
	flagSteps    = flag.Int("steps", 0, "Number of sensor poses")
	flagWidth    = flag.Int("width", 0, "Depth image width")
	flagHeight   = flag.Int("height", 0, "Depth image height")
	flagOutput   = flag.String("output", "", "Diagnostics output directory")
	flagNoise    = flag.Bool("noise", false, "Add gaussian noise to sensor depth")
	flagImages   = flag.Bool("images", false, "Write per-step depth images")
	flagWrite    = flag.String("write-config", "", "Write the effective config to this path and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// WriteConfigPath returns the --write-config destination, if any.
func WriteConfigPath() string {
	return *flagWrite
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagScenario != "" {
		cfg.Scenario.Name = *flagScenario
	}
	if *flagPath != "" {
		cfg.Path.Name = *flagPath
	}
	if *flagSteps > 0 {
		cfg.Path.Steps = *flagSteps
	}
	if *flagWidth > 0 {
		cfg.Sensor.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Sensor.Height = *flagHeight
	}
	if *flagOutput != "" {
		cfg.Output.Dir = *flagOutput
	}
	if *flagNoise {
		cfg.Noise.Enabled = true
	}
	if *flagImages {
		cfg.Output.DepthImages = true
	}
}
