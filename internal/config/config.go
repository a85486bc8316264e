package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Band is an inclusive score range.
type Band struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Policy configures one scoring policy instance.
type Policy struct {
	Strategy          string  `yaml:"strategy"`
	FailProbability   float64 `yaml:"fail_probability"`
	LowBand           Band    `yaml:"low_band"`
	HighBand          Band    `yaml:"high_band"`
	EffortThreshold   float64 `yaml:"effort_threshold"`
	TopperProbability float64 `yaml:"topper_probability"`
	SelectedMin       int     `yaml:"selected_min"`
	WaitlistedMin     int     `yaml:"waitlisted_min"`
}

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Storage struct {
		Backend string `yaml:"backend"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Questions struct {
		Bank string `yaml:"bank"`
		File string `yaml:"file"`
		TTL  string `yaml:"ttl"`
	} `yaml:"questions"`
	Exam struct {
		Duration         string `yaml:"duration"`
		IdentifierPrefix string `yaml:"identifier_prefix"`
		Seed             int64  `yaml:"seed"`
	} `yaml:"exam"`
	Scoring struct {
		Exam     Policy `yaml:"exam"`
		Lookup   Policy `yaml:"lookup"`
		Practice Policy `yaml:"practice"`
	} `yaml:"scoring"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

// Default returns the configuration used when no file overrides a value.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Log.Level = "info"
	cfg.Log.Format = "pretty"
	cfg.Storage.Backend = "memory"
	cfg.SQLite.Path = "vmm.db"
	cfg.Questions.Bank = "vmm25-exam"
	cfg.Questions.TTL = "10m"
	cfg.Exam.Duration = "600s"
	cfg.Exam.IdentifierPrefix = "VMM25"
	cfg.Scoring.Exam = Policy{
		Strategy:          "effort",
		LowBand:           Band{Min: 40, Max: 69},
		HighBand:          Band{Min: 70, Max: 99},
		EffortThreshold:   0.5,
		TopperProbability: 0.10,
		SelectedMin:       75,
		WaitlistedMin:     60,
	}
	cfg.Scoring.Lookup = Policy{
		Strategy:          "fail_probability",
		FailProbability:   0.7,
		LowBand:           Band{Min: 30, Max: 59},
		HighBand:          Band{Min: 70, Max: 99},
		TopperProbability: 0.10,
		SelectedMin:       75,
		WaitlistedMin:     60,
	}
	cfg.Scoring.Practice = Policy{
		Strategy:          "fail_probability",
		FailProbability:   0.8,
		LowBand:           Band{Min: 30, Max: 59},
		HighBand:          Band{Min: 70, Max: 99},
		TopperProbability: 0.10,
		SelectedMin:       75,
		WaitlistedMin:     60,
	}
	return cfg
}

// Load reads YAML config from path on top of Default. A .env file, when present,
// is loaded into the environment first.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load that tolerates a missing file.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil && os.IsNotExist(err) {
		return Default(), nil
	}
	return cfg, err
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
