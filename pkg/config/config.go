package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/stateforward/go-statechart"
)

// Machine holds the settings of one state machine. Nil fields are unset and
// leave the statechart defaults in place.
type Machine struct {
	Name            *string                         `yaml:"name" env:"NAME"`
	ID              *string                         `yaml:"id" env:"ID"`
	Memory          *bool                           `yaml:"memory" env:"MEMORY"`
	Substate        *bool                           `yaml:"substate" env:"SUBSTATE"`
	MessageNotExist *statechart.MessageNotExistMode `yaml:"message_not_exist" env:"MESSAGE_NOT_EXIST"`
	Trace           *statechart.TraceLevel          `yaml:"trace" env:"TRACE"`
}

// Decode reads a YAML document into a Machine. Unknown keys are rejected and
// an empty document yields an empty Machine.
func Decode(r io.Reader) (Machine, error) {
	var cfg Machine
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Machine{}, errors.Join(ErrDecodingConfig, err)
	}
	return cfg, nil
}

// FromEnv loads the given .env files, skipping those that do not exist, and
// then parses variables named prefix+NAME, prefix+TRACE and so on. Variables
// already present in the environment win over values from the files.
func FromEnv(prefix string, files ...string) (Machine, error) {
	var existing []string
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return Machine{}, fmt.Errorf("%w: %w", ErrLoadingEnvFile, err)
		}
	}
	var cfg Machine
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: prefix}); err != nil {
		return Machine{}, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// Merge returns base with every field that is set in override replaced.
func Merge(base, override Machine) Machine {
	merged := base
	if override.Name != nil {
		merged.Name = override.Name
	}
	if override.ID != nil {
		merged.ID = override.ID
	}
	if override.Memory != nil {
		merged.Memory = override.Memory
	}
	if override.Substate != nil {
		merged.Substate = override.Substate
	}
	if override.MessageNotExist != nil {
		merged.MessageNotExist = override.MessageNotExist
	}
	if override.Trace != nil {
		merged.Trace = override.Trace
	}
	return merged
}

// Options converts the set fields into statechart options.
func (cfg Machine) Options() []statechart.Option {
	var options []statechart.Option
	if cfg.Name != nil {
		options = append(options, statechart.WithName(*cfg.Name))
	}
	if cfg.ID != nil {
		options = append(options, statechart.WithID(*cfg.ID))
	}
	if cfg.Memory != nil {
		options = append(options, statechart.WithMemory(*cfg.Memory))
	}
	if cfg.Substate != nil && *cfg.Substate {
		options = append(options, statechart.AsSubstate())
	}
	if cfg.MessageNotExist != nil {
		options = append(options, statechart.WithMessageNotExistMode(*cfg.MessageNotExist))
	}
	if cfg.Trace != nil {
		options = append(options, statechart.WithTraceLevel(*cfg.Trace))
	}
	return options
}
