// Package config loads engine settings from an optional config file and
// environment overrides. Defaults are always valid; a missing file is not
// an error, a malformed one is.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ahale/housebound/engine/difficulty"
)

// Config is the runtime configuration of the game harness.
type Config struct {
	TickRate   float64    `mapstructure:"tick_rate"` // simulation steps per second
	StageDir   string     `mapstructure:"stage_dir"`
	SaveDir    string     `mapstructure:"save_dir"`
	AutoPilot  bool       `mapstructure:"auto_pilot"`
	Audio      Audio      `mapstructure:"audio"`
	Difficulty Difficulty `mapstructure:"difficulty"`
}

// Audio configures the cue synthesizer.
type Audio struct {
	Enabled    bool `mapstructure:"enabled"`
	SampleRate int  `mapstructure:"sample_rate"`
}

// Difficulty overrides the scaler's stock tuning. Zero fields fall back to
// the scaler's defaults.
type Difficulty struct {
	Initial           float64 `mapstructure:"initial"`
	Min               float64 `mapstructure:"min"`
	Max               float64 `mapstructure:"max"`
	EvalInterval      float64 `mapstructure:"eval_interval"`
	ExpectedGoalTime  float64 `mapstructure:"expected_goal_time"`
	ExpectedIdleRatio float64 `mapstructure:"expected_idle_ratio"`
	AdaptationRate    float64 `mapstructure:"adaptation_rate"`
	MetricWindow      int     `mapstructure:"metric_window"`
}

// ScalerConfig converts the overrides into the scaler's config type.
func (d Difficulty) ScalerConfig() difficulty.Config {
	return difficulty.Config{
		Initial:           d.Initial,
		Min:               d.Min,
		Max:               d.Max,
		EvalInterval:      d.EvalInterval,
		ExpectedGoalTime:  d.ExpectedGoalTime,
		ExpectedIdleRatio: d.ExpectedIdleRatio,
		AdaptationRate:    d.AdaptationRate,
		MetricWindow:      d.MetricWindow,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("tick_rate", 30.0)
	v.SetDefault("stage_dir", "stages/flat13")
	v.SetDefault("save_dir", ".")
	v.SetDefault("auto_pilot", false)
	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("difficulty.initial", 0)
	v.SetDefault("difficulty.min", 0)
	v.SetDefault("difficulty.max", 0)
	v.SetDefault("difficulty.eval_interval", 0)
	v.SetDefault("difficulty.expected_goal_time", 0)
	v.SetDefault("difficulty.expected_idle_ratio", 0)
	v.SetDefault("difficulty.adaptation_rate", 0)
	v.SetDefault("difficulty.metric_window", 0)
}

// Load reads configuration. With an explicit path the file must exist;
// otherwise housebound.yaml is searched for in the working directory and
// silently skipped when absent. HOUSEBOUND_* environment variables override
// file values.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HOUSEBOUND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("housebound")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.TickRate <= 0 {
		return Config{}, fmt.Errorf("tick_rate must be positive, got %v", cfg.TickRate)
	}
	return cfg, nil
}
