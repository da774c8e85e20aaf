package yogi

import (
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/wippyai/yogi-go/errors"
)

// EnvPrefix is the prefix for environment variables overriding Options.
const EnvPrefix = "YOGI_"

// Options control how the bindings manage a Library.
type Options struct {
	// LogLevel is the minimum zap level of the bindings' own diagnostics.
	LogLevel string `koanf:"log_level"`

	// MaxPending caps outstanding async operations. Zero means no limit.
	MaxPending int `koanf:"max_pending"`

	// CheckCompatibility verifies the core version on Open.
	CheckCompatibility bool `koanf:"check_compatibility"`

	// Finalizers destroys objects that are garbage collected without
	// Dispose.
	Finalizers bool `koanf:"finalizers"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		LogLevel:           "info",
		CheckCompatibility: true,
		Finalizers:         true,
	}
}

// LoadOptions merges defaults, an optional TOML file at path and YOGI_*
// environment variables, in that order.
func LoadOptions(path string) (Options, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultOptions(), "koanf"), nil); err != nil {
		return Options{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "load defaults")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return Options{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "load "+path)
		}
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKeyTransform,
	}), nil); err != nil {
		return Options{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "load environment")
	}

	var opts Options
	if err := k.Unmarshal("", &opts); err != nil {
		return Options{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "decode options")
	}
	if opts.MaxPending < 0 {
		return Options{}, errors.InvalidInput(errors.PhaseConfig, "max_pending must not be negative")
	}
	return opts, nil
}

// YOGI_MAX_PENDING -> max_pending
func envKeyTransform(k, v string) (string, any) {
	return strings.ToLower(strings.TrimPrefix(k, EnvPrefix)), v
}
