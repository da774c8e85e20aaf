package sim

import (
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/result"
)

// configuration is a JSON document built up by merging updates.
type configuration struct {
	k     *koanf.Koanf
	mu    sync.Mutex
	flags core.ConfigFlags
}

func newConfiguration(flags core.ConfigFlags) *configuration {
	return &configuration{k: koanf.New("."), flags: flags}
}

func (cfg *configuration) typeName() string { return "Configuration" }

func (cfg *configuration) destroy() {}

func (cfg *configuration) mergeJSON(s string) error {
	m, err := kjson.Parser().Unmarshal([]byte(s))
	if err != nil {
		return err
	}
	cfg.mu.Lock()
	defer cfg.mu.Unlock()
	return cfg.k.Load(confmap.Provider(m, ""), nil)
}

func (cfg *configuration) mergeFile(name string) error {
	var p koanf.Parser = kjson.Parser()
	if strings.EqualFold(filepath.Ext(name), ".toml") {
		p = toml.Parser()
	}
	cfg.mu.Lock()
	defer cfg.mu.Unlock()
	return cfg.k.Load(file.Provider(name), p)
}

func (cfg *configuration) dump(indent int) ([]byte, error) {
	cfg.mu.Lock()
	raw := cfg.k.Raw()
	cfg.mu.Unlock()
	if indent < 0 {
		return json.Marshal(raw)
	}
	return json.MarshalIndent(raw, "", strings.Repeat(" ", indent))
}

// section returns the sub-document at path. An empty path is the whole
// document.
func (cfg *configuration) section(path string) (*koanf.Koanf, bool) {
	cfg.mu.Lock()
	defer cfg.mu.Unlock()
	if path == "" {
		return cfg.k.Copy(), true
	}
	if !cfg.k.Exists(path) {
		return nil, false
	}
	return cfg.k.Cut(path), true
}

// ConfigurationCreate creates an empty configuration.
func (c *Core) ConfigurationCreate(flags core.ConfigFlags) (core.Handle, int32) {
	if flags&^(core.ConfigDisableVariables|core.ConfigMutableCmdLine) != 0 {
		return core.Invalid, c.fail(result.ErrInvalidParam, "invalid configuration flags %#x", int(flags))
	}
	return c.register(newConfiguration(flags))
}

// ConfigurationUpdateFromJSON merges a JSON object into the configuration.
func (c *Core) ConfigurationUpdateFromJSON(config core.Handle, s string) int32 {
	cfg, code := lookup[*configuration](c, config, "Configuration")
	if code < 0 {
		return code
	}
	if err := cfg.mergeJSON(s); err != nil {
		return c.fail(result.ErrParsingJSONFailed, "%v", err)
	}
	return c.ok()
}

// ConfigurationUpdateFromFile merges a JSON or TOML file, chosen by
// extension, into the configuration.
func (c *Core) ConfigurationUpdateFromFile(config core.Handle, filename string) int32 {
	if filename == "" {
		return c.fail(result.ErrInvalidParam, "filename is empty")
	}
	cfg, code := lookup[*configuration](c, config, "Configuration")
	if code < 0 {
		return code
	}
	if err := cfg.mergeFile(filename); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) || stderrors.Is(err, fs.ErrPermission) {
			return c.fail(result.ErrReadFileFailed, "could not read %s: %v", filename, err)
		}
		return c.fail(result.ErrParsingFileFailed, "could not parse %s: %v", filename, err)
	}
	return c.ok()
}

// ConfigurationDump serializes the configuration. A negative indent
// produces compact output.
func (c *Core) ConfigurationDump(config core.Handle, indent int) (string, int32) {
	if indent < -1 {
		return "", c.fail(result.ErrInvalidParam, "invalid indent %d", indent)
	}
	cfg, code := lookup[*configuration](c, config, "Configuration")
	if code < 0 {
		return "", code
	}
	b, err := cfg.dump(indent)
	if err != nil {
		return "", c.fail(result.ErrUnknown, "%v", err)
	}
	return string(b), c.ok()
}

// ConfigurationWriteToFile writes the dump to filename.
func (c *Core) ConfigurationWriteToFile(config core.Handle, filename string, indent int) int32 {
	if filename == "" || indent < -1 {
		return c.fail(result.ErrInvalidParam, "invalid filename or indent")
	}
	cfg, code := lookup[*configuration](c, config, "Configuration")
	if code < 0 {
		return code
	}
	b, err := cfg.dump(indent)
	if err != nil {
		return c.fail(result.ErrUnknown, "%v", err)
	}
	if err := os.WriteFile(filename, b, 0o644); err != nil {
		return c.fail(result.ErrWriteFileFailed, "%v", err)
	}
	return c.ok()
}
