package config

// RawConfig mirrors Config with optional fields so that unset keys keep
// their defaults.
type RawConfig struct {
	Display    *string    `yaml:"display"`
	XAuthority *string    `yaml:"xauthority"`
	Mode       *string    `yaml:"mode"`
	Title      *string    `yaml:"title"`
	Text       *string    `yaml:"text"`
	Font       *string    `yaml:"font"`
	Window     *RawWindow `yaml:"window"`
	Colors     *RawColors `yaml:"colors"`
	LogLevel   *string    `yaml:"log_level"`
}

type RawWindow struct {
	X      *int  `yaml:"x"`
	Y      *int  `yaml:"y"`
	Width  *int  `yaml:"width"`
	Height *int  `yaml:"height"`
	Center *bool `yaml:"center"`
}

type RawColors struct {
	Foreground *string `yaml:"foreground"`
	Background *string `yaml:"background"`
}

// BuildEffectiveConfig applies raw over the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	setString(&cfg.Display, raw.Display)
	setString(&cfg.XAuthority, raw.XAuthority)
	setString(&cfg.Mode, raw.Mode)
	setString(&cfg.Title, raw.Title)
	setString(&cfg.Text, raw.Text)
	setString(&cfg.Font, raw.Font)
	setString(&cfg.LogLevel, raw.LogLevel)

	if w := raw.Window; w != nil {
		setInt(&cfg.Window.X, w.X)
		setInt(&cfg.Window.Y, w.Y)
		setInt(&cfg.Window.Width, w.Width)
		setInt(&cfg.Window.Height, w.Height)
		if w.Center != nil {
			cfg.Window.Center = *w.Center
		}
	}
	if c := raw.Colors; c != nil {
		setString(&cfg.Colors.Foreground, c.Foreground)
		setString(&cfg.Colors.Background, c.Background)
	}
	return cfg
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
