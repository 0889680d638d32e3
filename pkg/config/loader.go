package config

import (
	_ "embed"
	goerrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/rulescan/pkg/errors"
	"github.com/arthur-debert/rulescan/pkg/logging"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// envPrefix namespaces environment overrides, e.g.
// RULESCAN_ENGINE_MAX_CONCURRENT=4.
const envPrefix = "RULESCAN_"

// searchNames are probed in the working directory when no explicit
// config path is given.
var searchNames = []string{".rulescan.toml", "rulescan.toml", ".rulescan.yaml", "rulescan.yaml"}

// rawBytesProvider adapts an embedded byte slice to koanf's provider
// interface.
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, goerrors.New("not implemented")
}

// Load resolves the configuration. path selects a config file and must
// exist when non-empty; with an empty path the working directory is
// probed for .rulescan.{toml,yaml} and rulescan.{toml,yaml}, all
// optional. The file format follows the extension, TOML unless the
// file is named .yaml or .yml. overrides apply last and use dotted
// keys ("engine.max_concurrent").
func Load(path string, overrides map[string]interface{}) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load embedded defaults")
	}

	loadedFrom := ""
	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config file %s", path)
		}
		loadedFrom = path
	} else {
		for _, name := range searchNames {
			if _, err := os.Stat(name); err != nil {
				continue
			}
			if err := k.Load(file.Provider(name), parserFor(name)); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %s", name)
			}
			loadedFrom = name
			break
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envToKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.GetLogger("config")
	logger.Debug().
		Str("file", loadedFrom).
		Int("maxConcurrent", cfg.Engine.MaxConcurrent).
		Bool("cacheEnabled", cfg.Cache.Enabled).
		Msg("Configuration resolved")
	return &cfg, nil
}

// Default returns the embedded defaults without consulting files or
// the environment.
func Default() *Config {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		// The embedded document is fixed at build time; failing to
		// parse it is a packaging bug.
		panic(err)
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		panic(err)
	}
	return &cfg
}

// envToKey maps RULESCAN_SECTION_KEY_NAME to section.key_name. Only
// the first underscore separates the section; the rest belong to the
// key itself.
func envToKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", 1)
}

// parserFor picks the koanf parser matching a config file's extension.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}
