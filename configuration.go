package yogi

import (
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"

	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/errors"
)

// Configuration is a JSON document held by the core, used to parametrize
// branches.
type Configuration struct {
	Object
	flags core.ConfigFlags
}

// NewConfiguration creates an empty configuration.
func (l *Library) NewConfiguration(flags core.ConfigFlags) (*Configuration, error) {
	obj, err := l.create("Configuration", func() (core.Handle, int32) {
		return l.api.ConfigurationCreate(flags)
	})
	if err != nil {
		return nil, err
	}
	return &Configuration{Object: obj, flags: flags}, nil
}

// Flags returns the creation flags.
func (c *Configuration) Flags() core.ConfigFlags {
	return c.flags
}

// UpdateFromJSON merges a JSON object into the configuration.
func (c *Configuration) UpdateFromJSON(json string) error {
	_, err := c.call(func(h core.Handle) int32 {
		return c.lib.api.ConfigurationUpdateFromJSON(h, json)
	})
	return err
}

// UpdateFromFile merges a JSON or TOML file into the configuration.
func (c *Configuration) UpdateFromFile(filename string) error {
	_, err := c.call(func(h core.Handle) int32 {
		return c.lib.api.ConfigurationUpdateFromFile(h, filename)
	})
	return err
}

// Dump serializes the configuration. A negative indent produces compact
// output.
func (c *Configuration) Dump(indent int) (string, error) {
	var s string
	_, err := c.call(func(h core.Handle) int32 {
		var code int32
		s, code = c.lib.api.ConfigurationDump(h, indent)
		return code
	})
	if err != nil {
		return "", err
	}
	return s, nil
}

// WriteToFile writes the serialized configuration to filename.
func (c *Configuration) WriteToFile(filename string, indent int) error {
	_, err := c.call(func(h core.Handle) int32 {
		return c.lib.api.ConfigurationWriteToFile(h, filename, indent)
	})
	return err
}

// Decode unmarshals the configuration into v using json struct tags.
func (c *Configuration) Decode(v any) error {
	s, err := c.Dump(-1)
	if err != nil {
		return err
	}
	m, err := kjson.Parser().Unmarshal([]byte(s))
	if err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "parse configuration dump")
	}
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(m, ""), nil); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "load configuration")
	}
	if err := k.UnmarshalWithConf("", v, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "decode configuration")
	}
	return nil
}
