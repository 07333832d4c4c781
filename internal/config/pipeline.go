package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// PipelineConfig defines the selectable stages for leads and opportunities.
// Operators can override the defaults with a crm.yml file; changes are
// picked up without a restart.
type PipelineConfig struct {
	LeadStatuses      []string `mapstructure:"leadStatuses"`
	OpportunityStages []Stage  `mapstructure:"opportunityStages"`
}

type Stage struct {
	Name        string `mapstructure:"name"`
	Probability int    `mapstructure:"probability"`
	Won         bool   `mapstructure:"won"`
	Lost        bool   `mapstructure:"lost"`
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		LeadStatuses: []string{"NEW", "CONTACTED", "QUALIFIED", "LOST"},
		OpportunityStages: []Stage{
			{Name: "PROSPECTING", Probability: 10},
			{Name: "QUALIFICATION", Probability: 25},
			{Name: "PROPOSAL", Probability: 50},
			{Name: "NEGOTIATION", Probability: 75},
			{Name: "CLOSED_WON", Probability: 100, Won: true},
			{Name: "CLOSED_LOST", Probability: 0, Lost: true},
		},
	}
}

type PipelineConfigHolder struct {
	current atomic.Value // holds PipelineConfig
}

func NewPipelineConfigHolder(log *zap.Logger) (*PipelineConfigHolder, error) {
	log = log.Named("pipeline.config")
	v := viper.New()

	v.SetConfigName("crm")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/startupcrm/config")
	v.AddConfigPath("/etc/startupcrm")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STARTUPCRM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPipelineConfig()
		v.SetDefault("pipeline.leadStatuses", defaults.LeadStatuses)
		v.SetDefault("pipeline.opportunityStages", defaults.OpportunityStages)
	}

	var cfg PipelineConfig
	if err := v.UnmarshalKey("pipeline", &cfg); err != nil {
		return nil, err
	}
	if err := validatePipelineConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PipelineConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PipelineConfig
		if err := v.UnmarshalKey("pipeline", &updated); err != nil {
			log.Warn("pipeline config reload failed", zap.Error(err))
			return
		}
		if err := validatePipelineConfig(updated); err != nil {
			log.Warn("invalid pipeline config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("pipeline config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewStaticPipelineConfigHolder wraps a fixed pipeline config with no
// file watching. Intended for tests.
func NewStaticPipelineConfigHolder(cfg PipelineConfig) *PipelineConfigHolder {
	holder := &PipelineConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *PipelineConfigHolder) Get() PipelineConfig {
	return h.current.Load().(PipelineConfig)
}

func (h *PipelineConfigHolder) IsLeadStatus(status string) bool {
	for _, s := range h.Get().LeadStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (h *PipelineConfigHolder) FindStage(name string) (Stage, bool) {
	for _, s := range h.Get().OpportunityStages {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}

func validatePipelineConfig(cfg PipelineConfig) error {
	if len(cfg.LeadStatuses) == 0 {
		return errors.New("pipeline config requires at least one lead status")
	}
	if len(cfg.OpportunityStages) == 0 {
		return errors.New("pipeline config requires at least one opportunity stage")
	}
	seen := map[string]bool{}
	for _, s := range cfg.OpportunityStages {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return errors.New("opportunity stage name must not be empty")
		}
		if seen[name] {
			return errors.New("duplicate opportunity stage: " + name)
		}
		seen[name] = true
		if s.Probability < 0 || s.Probability > 100 {
			return errors.New("stage probability must be within 0-100: " + name)
		}
	}
	return nil
}
