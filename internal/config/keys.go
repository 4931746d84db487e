package config

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/HexSleeves/prep/internal/provider"
)

type keyAccessor struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) keyAccessor {
	return keyAccessor{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func boolKey(field func(c *Config) *bool) keyAccessor {
	return keyAccessor{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid boolean value %q", v)
			}
			*field(c) = b
			return nil
		},
	}
}

var keys = map[string]keyAccessor{
	"default.provider": {
		get: func(c *Config) string { return c.Default.Provider },
		set: func(c *Config, v string) error {
			if _, err := provider.ParseKind(v); err != nil {
				return err
			}
			c.Default.Provider = v
			return nil
		},
	},
	"default.model": stringKey(func(c *Config) *string { return &c.Default.Model }),
	"default.output_format": {
		get: func(c *Config) string { return c.Default.OutputFormat },
		set: func(c *Config, v string) error {
			switch v {
			case "text", "json", "markdown":
				c.Default.OutputFormat = v
				return nil
			}
			return fmt.Errorf("invalid output format %q (want text, json or markdown)", v)
		},
	},
	"default.copy_to_clipboard": boolKey(func(c *Config) *bool { return &c.Default.CopyToClipboard }),
	"ui.color":                  boolKey(func(c *Config) *bool { return &c.UI.Color }),
	"ui.spinner":                boolKey(func(c *Config) *bool { return &c.UI.Spinner }),
	"history.enabled":           boolKey(func(c *Config) *bool { return &c.History.Enabled }),
	"history.max_entries": {
		get: func(c *Config) string { return strconv.Itoa(c.History.MaxEntries) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid number %q", v)
			}
			c.History.MaxEntries = n
			return nil
		},
	},
	"history.path": stringKey(func(c *Config) *string { return &c.History.Path }),
}

func init() {
	for kind, section := range providerSections {
		kind := kind
		keys["providers."+section+".endpoint"] = stringKey(func(c *Config) *string { return &c.provider(kind).Endpoint })
		keys["providers."+section+".model"] = stringKey(func(c *Config) *string { return &c.provider(kind).Model })
	}
}

// Keys lists every settable dot-notation key.
func Keys() []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get returns the value of a dot-notation key such as "history.enabled".
func (c *Config) Get(key string) (string, error) {
	k, ok := keys[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return k.get(c), nil
}

// Set parses and assigns value to a dot-notation key.
func (c *Config) Set(key, value string) error {
	k, ok := keys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	if err := k.set(c, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}
