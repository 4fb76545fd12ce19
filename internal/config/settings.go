package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"github.com/tartampluch/go-countdown/internal/calendar"
)

// Settings is the runtime configuration, merged from defaults, an optional
// YAML file and COUNTDOWN_* environment variables.
type Settings struct {
	Source          SourceSettings   `mapstructure:"source"`
	Server          ServerSettings   `mapstructure:"server"`
	Reminder        ReminderSettings `mapstructure:"reminder"`
	RefreshInterval int              `mapstructure:"refresh_interval_min"`
	Language        string           `mapstructure:"language"`
	Limit           int              `mapstructure:"limit"`
	LeapDayPolicy   string           `mapstructure:"leap_day_policy"`
}

// SourceSettings selects where the event catalog comes from.
type SourceSettings struct {
	Mode   string `mapstructure:"mode"`   // builtin, local or web
	Path   string `mapstructure:"path"`   // Local file (.yaml, .yml, .vcf, .vcard)
	URL    string `mapstructure:"url"`    // Remote catalog
	User   string `mapstructure:"user"`   // Basic auth user; the password lives in the keyring
	Format string `mapstructure:"format"` // auto, yaml or vcard
}

// ServerSettings configures the HTTP feed.
type ServerSettings struct {
	Port string `mapstructure:"port"`
}

// ReminderSettings configures the VALARM attached to feed events.
type ReminderSettings struct {
	Trigger string `mapstructure:"trigger"` // ISO8601 duration, e.g. "-P1D"; empty disables alarms
}

// Load reads the configuration. An empty path searches the working directory
// and $HOME/.go-countdown; a missing file is not an error in that case.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileType)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/" + ConfigDirName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%s: %w", ErrConfigRead, err)
		}
		slog.Debug(MsgConfigDefault, LogKeyComponent, CompConfig)
	} else {
		slog.Debug(MsgConfigLoaded,
			LogKeyComponent, CompConfig,
			LogKeyFile, v.ConfigFileUsed())
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigDecode, err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigInvalid, err)
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeySourceMode, SourceModeBuiltin)
	v.SetDefault(KeySourcePath, "")
	v.SetDefault(KeySourceURL, "")
	v.SetDefault(KeySourceUser, "")
	v.SetDefault(KeySourceFormat, FormatAuto)
	v.SetDefault(KeyServerPort, DefaultPort)
	v.SetDefault(KeyRefreshMin, DefaultRefreshMin)
	v.SetDefault(KeyLanguage, DefaultLanguage)
	v.SetDefault(KeyLimit, DefaultLimit)
	v.SetDefault(KeyLeapDayPolicy, DefaultLeapDayPolicy)
	v.SetDefault(KeyReminderTrigger, "")
}

// LeapDay returns the parsed leap-day policy. Validate has already vetted it.
func (s *Settings) LeapDay() calendar.LeapDayPolicy {
	p, _ := calendar.ParseLeapDayPolicy(s.LeapDayPolicy)
	return p
}

// Validate checks the settings for consistency.
func (s *Settings) Validate() error {
	switch s.Source.Mode {
	case SourceModeBuiltin:
	case SourceModeLocal:
		if s.Source.Path == "" {
			return errors.New(ErrLocalPathEmpty)
		}
	case SourceModeWeb:
		if s.Source.URL == "" {
			return errors.New(ErrWebURLEmpty)
		}
	default:
		return fmt.Errorf("%s: %q", ErrModeUnsupport, s.Source.Mode)
	}

	switch s.Source.Format {
	case "", FormatAuto, FormatYAML, FormatVCard:
	default:
		return fmt.Errorf("%s: %q", ErrFormatUnsupport, s.Source.Format)
	}

	if err := ValidatePort(s.Server.Port); err != nil {
		return err
	}
	if s.RefreshInterval < 0 {
		return errors.New(ErrRefreshNegative)
	}
	if s.Limit < 0 {
		return errors.New(ErrLimitNegative)
	}
	if !slices.Contains(SupportedLanguages, s.Language) {
		return fmt.Errorf("%s: %q", ErrLanguage, s.Language)
	}
	if _, err := calendar.ParseLeapDayPolicy(s.LeapDayPolicy); err != nil {
		return err
	}
	return nil
}

// ValidatePort checks that port is a number in the TCP range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}
