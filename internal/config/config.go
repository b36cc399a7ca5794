package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/cdsim/internal/cluster"
	"github.com/san-kum/cdsim/internal/dynamo"
	"github.com/san-kum/cdsim/internal/ratetheory"
)

const (
	DefaultModel      = "cluster"
	DefaultIntegrator = "euler"
	DefaultDt         = 1e-6
	DefaultDuration   = 1e-3
	DefaultTemp       = 300.0
	DefaultK0Exp      = 11.0
	DefaultCsExp      = 12.0
)

// Config is one run. Top-level keys match the rate-theory JSON input
// format (total_time_seconds, dt_seconds, temperature_kelvin, K_0_exp,
// C_s_exp, sample_interval) so existing input files load unchanged.
type Config struct {
	Model          string  `yaml:"model" json:"model" mapstructure:"model"`
	Integrator     string  `yaml:"integrator" json:"integrator" mapstructure:"integrator"`
	Duration       float64 `yaml:"total_time_seconds" json:"total_time_seconds" mapstructure:"total_time_seconds"`
	Dt             float64 `yaml:"dt_seconds" json:"dt_seconds" mapstructure:"dt_seconds"`
	SampleInterval float64 `yaml:"sample_interval" json:"sample_interval" mapstructure:"sample_interval"`
	Temperature    float64 `yaml:"temperature_kelvin" json:"temperature_kelvin" mapstructure:"temperature_kelvin"`
	K0Exp          float64 `yaml:"K_0_exp" json:"K_0_exp" mapstructure:"K_0_exp"`
	CsExp          float64 `yaml:"C_s_exp" json:"C_s_exp" mapstructure:"C_s_exp"`
	Workers        int     `yaml:"workers" json:"workers" mapstructure:"workers"`
	LogScale       bool    `yaml:"log_scale" json:"log_scale" mapstructure:"log_scale"`

	Cluster    ClusterConfig    `yaml:"cluster" json:"cluster" mapstructure:"cluster"`
	RateTheory RateTheoryConfig `yaml:"rate_theory" json:"rate_theory" mapstructure:"rate_theory"`
	InitState  []Seed           `yaml:"init_state,omitempty" json:"init_state,omitempty" mapstructure:"init_state"`
}

// Seed is an initial concentration. For the cluster model Size is a signed
// cluster size; for the rate-theory model +1 is C_i and -1 is C_v.
type Seed struct {
	Size          int     `yaml:"size" json:"size" mapstructure:"size"`
	Concentration float64 `yaml:"concentration" json:"concentration" mapstructure:"concentration"`
}

type ClusterConfig struct {
	MaxSize                     int            `yaml:"max_size" json:"max_size" mapstructure:"max_size"`
	AtomicVolume                float64        `yaml:"atomic_volume" json:"atomic_volume" mapstructure:"atomic_volume"`
	VacancyMigrationEnergy      float64        `yaml:"vacancy_migration_energy" json:"vacancy_migration_energy" mapstructure:"vacancy_migration_energy"`
	InterstitialMigrationEnergy float64        `yaml:"interstitial_migration_energy" json:"interstitial_migration_energy" mapstructure:"interstitial_migration_energy"`
	DiffusionPrefactor          float64        `yaml:"diffusion_prefactor" json:"diffusion_prefactor" mapstructure:"diffusion_prefactor"`
	InterstitialGeneration      float64        `yaml:"interstitial_generation" json:"interstitial_generation" mapstructure:"interstitial_generation"`
	VacancyGeneration           float64        `yaml:"vacancy_generation" json:"vacancy_generation" mapstructure:"vacancy_generation"`
	SinkRadius                  float64        `yaml:"sink_radius" json:"sink_radius" mapstructure:"sink_radius"`
	SinkConcentration           float64        `yaml:"sink_concentration" json:"sink_concentration" mapstructure:"sink_concentration"`
	VacancyBinding              *BindingConfig `yaml:"vacancy_binding,omitempty" json:"vacancy_binding,omitempty" mapstructure:"vacancy_binding"`
	InterstitialBinding         *BindingConfig `yaml:"interstitial_binding,omitempty" json:"interstitial_binding,omitempty" mapstructure:"interstitial_binding"`
}

// BindingConfig is a capillary binding-energy law. Omitting it disables
// dissociation for that cluster kind.
type BindingConfig struct {
	Formation   float64 `yaml:"formation" json:"formation" mapstructure:"formation"`
	Coefficient float64 `yaml:"coefficient" json:"coefficient" mapstructure:"coefficient"`
}

type RateTheoryConfig struct {
	InterstitialPrefactor       float64 `yaml:"interstitial_prefactor" json:"interstitial_prefactor" mapstructure:"interstitial_prefactor"`
	VacancyPrefactor            float64 `yaml:"vacancy_prefactor" json:"vacancy_prefactor" mapstructure:"vacancy_prefactor"`
	InterstitialMigrationEnergy float64 `yaml:"interstitial_migration_energy" json:"interstitial_migration_energy" mapstructure:"interstitial_migration_energy"`
	VacancyMigrationEnergy      float64 `yaml:"vacancy_migration_energy" json:"vacancy_migration_energy" mapstructure:"vacancy_migration_energy"`
	RecombinationRadius         float64 `yaml:"recombination_radius" json:"recombination_radius" mapstructure:"recombination_radius"`
	InterstitialSinkRadius      float64 `yaml:"interstitial_sink_radius" json:"interstitial_sink_radius" mapstructure:"interstitial_sink_radius"`
	VacancySinkRadius           float64 `yaml:"vacancy_sink_radius" json:"vacancy_sink_radius" mapstructure:"vacancy_sink_radius"`
}

func DefaultConfig() *Config {
	cp := cluster.DefaultParams()
	rp := ratetheory.DefaultParams()
	vb := cp.VacancyBinding.(cluster.Capillary)
	return &Config{
		Model:       DefaultModel,
		Integrator:  DefaultIntegrator,
		Duration:    DefaultDuration,
		Dt:          DefaultDt,
		Temperature: DefaultTemp,
		K0Exp:       DefaultK0Exp,
		CsExp:       DefaultCsExp,
		Workers:     1,
		Cluster: ClusterConfig{
			MaxSize:                     cp.MaxSize,
			AtomicVolume:                cp.AtomicVolume,
			VacancyMigrationEnergy:      cp.VacancyMigrationEnergy,
			InterstitialMigrationEnergy: cp.InterstitialMigrationEnergy,
			DiffusionPrefactor:          cp.DiffusionPrefactor,
			InterstitialGeneration:      cp.InterstitialGeneration,
			VacancyGeneration:           cp.VacancyGeneration,
			SinkRadius:                  cp.SinkRadius,
			SinkConcentration:           cp.SinkConcentration,
			VacancyBinding:              &BindingConfig{Formation: vb.Formation, Coefficient: vb.Coefficient},
		},
		RateTheory: RateTheoryConfig{
			InterstitialPrefactor:       rp.InterstitialPrefactor,
			VacancyPrefactor:            rp.VacancyPrefactor,
			InterstitialMigrationEnergy: rp.InterstitialMigrationEnergy,
			VacancyMigrationEnergy:      rp.VacancyMigrationEnergy,
			RecombinationRadius:         rp.RecombinationRadius,
			InterstitialSinkRadius:      rp.InterstitialSinkRadius,
			VacancySinkRadius:           rp.VacancySinkRadius,
		},
	}
}

// Load reads a JSON or YAML file over the defaults. Keys missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as JSON when path ends in .json and as YAML otherwise.
func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	out := *c
	if c.Cluster.VacancyBinding != nil {
		b := *c.Cluster.VacancyBinding
		out.Cluster.VacancyBinding = &b
	}
	if c.Cluster.InterstitialBinding != nil {
		b := *c.Cluster.InterstitialBinding
		out.Cluster.InterstitialBinding = &b
	}
	out.InitState = append([]Seed(nil), c.InitState...)
	return &out
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return dynamo.ParamError("dt_seconds", c.Dt, "must be positive")
	}
	if c.Duration <= 0 {
		return dynamo.ParamError("total_time_seconds", c.Duration, "must be positive")
	}
	if c.SampleInterval < 0 {
		return dynamo.ParamError("sample_interval", c.SampleInterval, "must not be negative")
	}
	if c.Workers < 0 {
		return dynamo.ParamError("workers", c.Workers, "must not be negative")
	}
	if c.Model == DefaultModel {
		return c.ClusterParams().Validate()
	}
	return nil
}

func (c *Config) SimConfig() dynamo.Config {
	return dynamo.Config{
		Dt:             c.Dt,
		Duration:       c.Duration,
		SampleInterval: c.SampleInterval,
	}
}

func (c *Config) ClusterParams() cluster.Params {
	p := cluster.DefaultParams()
	cc := c.Cluster
	p.Temperature = c.Temperature
	p.MaxSize = cc.MaxSize
	p.AtomicVolume = cc.AtomicVolume
	p.VacancyMigrationEnergy = cc.VacancyMigrationEnergy
	p.InterstitialMigrationEnergy = cc.InterstitialMigrationEnergy
	p.DiffusionPrefactor = cc.DiffusionPrefactor
	p.InterstitialGeneration = cc.InterstitialGeneration
	p.VacancyGeneration = cc.VacancyGeneration
	p.SinkRadius = cc.SinkRadius
	p.SinkConcentration = cc.SinkConcentration
	p.VacancyBinding = cc.VacancyBinding.law()
	p.InterstitialBinding = cc.InterstitialBinding.law()
	return p
}

func (b *BindingConfig) law() cluster.BindingLaw {
	if b == nil {
		return nil
	}
	return cluster.Capillary{Formation: b.Formation, Coefficient: b.Coefficient}
}

func (c *Config) RateTheoryParams() ratetheory.Params {
	p := ratetheory.DefaultParams()
	rc := c.RateTheory
	p.Temperature = c.Temperature
	p.ProductionExp = c.K0Exp
	p.SinkExp = c.CsExp
	p.InterstitialPrefactor = rc.InterstitialPrefactor
	p.VacancyPrefactor = rc.VacancyPrefactor
	p.InterstitialMigrationEnergy = rc.InterstitialMigrationEnergy
	p.VacancyMigrationEnergy = rc.VacancyMigrationEnergy
	p.RecombinationRadius = rc.RecombinationRadius
	p.InterstitialSinkRadius = rc.InterstitialSinkRadius
	p.VacancySinkRadius = rc.VacancySinkRadius
	return p
}

var setters = map[string]func(c *Config, v float64){
	"temperature_kelvin":      func(c *Config, v float64) { c.Temperature = v },
	"dt_seconds":              func(c *Config, v float64) { c.Dt = v },
	"total_time_seconds":      func(c *Config, v float64) { c.Duration = v },
	"sample_interval":         func(c *Config, v float64) { c.SampleInterval = v },
	"K_0_exp":                 func(c *Config, v float64) { c.K0Exp = v },
	"C_s_exp":                 func(c *Config, v float64) { c.CsExp = v },
	"max_size":                func(c *Config, v float64) { c.Cluster.MaxSize = int(v) },
	"sink_concentration":      func(c *Config, v float64) { c.Cluster.SinkConcentration = v },
	"interstitial_generation": func(c *Config, v float64) { c.Cluster.InterstitialGeneration = v },
	"vacancy_generation":      func(c *Config, v float64) { c.Cluster.VacancyGeneration = v },
	"atomic_volume":           func(c *Config, v float64) { c.Cluster.AtomicVolume = v },
}

// Set assigns a numeric parameter by its config key.
func (c *Config) Set(name string, value float64) error {
	fn, ok := setters[name]
	if !ok {
		return fmt.Errorf("unknown parameter: %s", name)
	}
	fn(c, value)
	return nil
}

// Settable lists the keys accepted by Set.
func Settable() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
