package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/edihlab/maturity/internal/panel"
	"github.com/edihlab/maturity/internal/scoring"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Generator GeneratorConfig `yaml:"generator"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Reports   ReportsConfig   `yaml:"reports"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port        int `yaml:"port"`
	MetricsPort int `yaml:"metrics_port"`
}

type DataConfig struct {
	BeforePath string `yaml:"before_path"`
	AfterPath  string `yaml:"after_path"`
	MergedPath string `yaml:"merged_path"`
}

type GeneratorConfig struct {
	Companies        int      `yaml:"companies"`
	SeedBefore       uint64   `yaml:"seed_before"`
	SeedAfter        uint64   `yaml:"seed_after"`
	LatentMeanBefore float64  `yaml:"latent_mean_before"`
	LatentMeanAfter  float64  `yaml:"latent_mean_after"`
	LatentSpread     float64  `yaml:"latent_spread"`
	NoiseSpread      float64  `yaml:"noise_spread"`
	ImprovementFloor float64  `yaml:"improvement_floor"`
	Sectors          []string `yaml:"sectors"`
	Country          string   `yaml:"country"`
}

type ScoringConfig struct {
	WeightsVersion string             `yaml:"weights_version"`
	Weights        map[string]float64 `yaml:"weights"`
}

type ReportsConfig struct {
	Dir        string `yaml:"dir"`
	Workers    int    `yaml:"workers"`
	SampleSize int    `yaml:"sample_size"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// WeightConfig converts the scoring section into the calculator's versioned
// weight value and validates it once, at startup.
func (c *Config) WeightConfig() (scoring.WeightConfig, error) {
	w := scoring.WeightConfig{Version: c.Scoring.WeightsVersion, Weights: c.Scoring.Weights}
	if err := w.Validate(); err != nil {
		return scoring.WeightConfig{}, fmt.Errorf("scoring config: %w", err)
	}
	return w, nil
}

// GeneratorConfig converts the generator section into the panel generator's
// parameter set.
func (c *Config) GeneratorConfig() panel.GeneratorConfig {
	return panel.GeneratorConfig{
		LatentMeanBefore: c.Generator.LatentMeanBefore,
		LatentMeanAfter:  c.Generator.LatentMeanAfter,
		LatentSpread:     c.Generator.LatentSpread,
		NoiseSpread:      c.Generator.NoiseSpread,
		Sectors:          c.Generator.Sectors,
		Country:          c.Generator.Country,
	}
}

func Load(path string) (*Config, error) {
	defaults := scoring.DefaultWeights()
	gen := panel.DefaultGeneratorConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Data: DataConfig{
			BeforePath: "data/rawdma_before.xlsx",
			AfterPath:  "data/rawdma_after.xlsx",
			MergedPath: "data/dma_merged.xlsx",
		},
		Generator: GeneratorConfig{
			Companies:        1000,
			SeedBefore:       42,
			SeedAfter:        24,
			LatentMeanBefore: gen.LatentMeanBefore,
			LatentMeanAfter:  gen.LatentMeanAfter,
			LatentSpread:     gen.LatentSpread,
			NoiseSpread:      gen.NoiseSpread,
			ImprovementFloor: 5,
			Sectors:          gen.Sectors,
			Country:          gen.Country,
		},
		Scoring: ScoringConfig{
			WeightsVersion: defaults.Version,
			Weights:        defaults.Weights,
		},
		Reports: ReportsConfig{
			Dir:        "reports",
			Workers:    4,
			SampleSize: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MATURITY_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("MATURITY_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("MATURITY_BEFORE_PATH"); v != "" {
		cfg.Data.BeforePath = v
	}
	if v := os.Getenv("MATURITY_AFTER_PATH"); v != "" {
		cfg.Data.AfterPath = v
	}
	if v := os.Getenv("MATURITY_MERGED_PATH"); v != "" {
		cfg.Data.MergedPath = v
	}
	if v := os.Getenv("MATURITY_COMPANIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Generator.Companies = n
		}
	}
	if v := os.Getenv("MATURITY_REPORTS_DIR"); v != "" {
		cfg.Reports.Dir = v
	}
	if v := os.Getenv("MATURITY_REPORT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Reports.Workers = n
		}
	}
	if v := os.Getenv("MATURITY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
