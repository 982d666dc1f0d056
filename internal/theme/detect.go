package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/apex/log"
	"gopkg.in/ini.v1"
)

// source is one terminal whose configuration can supply a palette.
type source struct {
	name  string
	paths func(home string) []string
	parse func(path string) (Palette, bool)
}

// sources lists the terminals in detection priority order.
var sources = []source{
	{
		name: "omarchy",
		paths: func(home string) []string {
			return []string{filepath.Join(home, ".config", "omarchy", "current", "theme", "alacritty.toml")}
		},
		parse: parseAlacritty,
	},
	{
		name: "alacritty",
		paths: func(home string) []string {
			return []string{
				filepath.Join(home, ".config", "alacritty", "alacritty.toml"),
				filepath.Join(home, ".alacritty.toml"),
			}
		},
		parse: parseAlacritty,
	},
	{
		name: "kitty",
		paths: func(home string) []string {
			return []string{filepath.Join(home, ".config", "kitty", "kitty.conf")}
		},
		parse: parseKitty,
	},
	{
		name: "foot",
		paths: func(home string) []string {
			return []string{filepath.Join(home, ".config", "foot", "foot.ini")}
		},
		parse: parseFoot,
	},
}

// WatchDirs returns the directories holding the files Detect reads.
func WatchDirs(home string) []string {
	var dirs []string
	seen := map[string]bool{}
	for _, src := range sources {
		for _, p := range src.paths(home) {
			if d := filepath.Dir(p); !seen[d] && d != home {
				seen[d] = true
				dirs = append(dirs, d)
			}
		}
	}
	return dirs
}

// Detect loads the palette of the first configured terminal, then applies
// environment overrides.
func Detect() Palette {
	home, err := os.UserHomeDir()
	if err != nil {
		return applyEnvOverrides(DefaultPalette())
	}
	return applyEnvOverrides(DetectIn(home))
}

// DetectIn is Detect rooted at home, without environment overrides.
func DetectIn(home string) Palette {
	for _, src := range sources {
		for _, path := range src.paths(home) {
			if p, ok := src.parse(path); ok {
				log.WithFields(log.Fields{"source": src.name, "path": path}).Debug("theme detected")
				return p
			}
		}
	}
	return DefaultPalette()
}

// alacrittyColors is the part of alacritty.toml the palette uses
type alacrittyColors struct {
	Colors struct {
		Primary struct {
			Background string `toml:"background"`
			Foreground string `toml:"foreground"`
		} `toml:"primary"`
		Selection struct {
			Background string `toml:"background"`
		} `toml:"selection"`
		Normal struct {
			Red    string `toml:"red"`
			Green  string `toml:"green"`
			Yellow string `toml:"yellow"`
		} `toml:"normal"`
	} `toml:"colors"`
}

func parseAlacritty(path string) (Palette, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Palette{}, false
	}

	var cfg alacrittyColors
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Palette{}, false
	}
	c := cfg.Colors
	return derive(terminalColors{
		bg:        c.Primary.Background,
		fg:        c.Primary.Foreground,
		selection: c.Selection.Background,
		red:       c.Normal.Red,
		green:     c.Normal.Green,
		yellow:    c.Normal.Yellow,
	})
}

// parseKitty reads kitty.conf, whose lines are "key value" pairs.
func parseKitty(path string) (Palette, bool) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters:  " \t",
		IgnoreInlineComment: true,
		AllowBooleanKeys:    true,
	}, path)
	if err != nil {
		return Palette{}, false
	}

	sec := cfg.Section(ini.DefaultSection)
	return derive(terminalColors{
		bg:        sec.Key("background").String(),
		fg:        sec.Key("foreground").String(),
		selection: sec.Key("selection_background").String(),
		red:       sec.Key("color1").String(),
		green:     sec.Key("color2").String(),
		yellow:    sec.Key("color3").String(),
	})
}

func parseFoot(path string) (Palette, bool) {
	cfg, err := ini.Load(path)
	if err != nil {
		return Palette{}, false
	}

	colors := cfg.Section("colors")
	return derive(terminalColors{
		bg:        colors.Key("background").String(),
		fg:        colors.Key("foreground").String(),
		selection: colors.Key("selection-background").String(),
		red:       colors.Key("regular1").String(),
		green:     colors.Key("regular2").String(),
		yellow:    colors.Key("regular3").String(),
	})
}

// terminalColors are the raw values read from a terminal config
type terminalColors struct {
	bg, fg, selection  string
	red, green, yellow string
}

// derive builds a palette from terminal colors. Background and foreground
// are required; everything else falls back to values mixed from them or
// to the defaults.
func derive(tc terminalColors) (Palette, bool) {
	if tc.bg == "" || tc.fg == "" {
		return Palette{}, false
	}

	p := DefaultPalette()
	p.BG = normalizeHex(tc.bg)
	p.FG = normalizeHex(tc.fg)
	p.Muted = dimColor(p.FG, 0.5)

	if tc.selection != "" {
		p.AccentBg = normalizeHex(tc.selection)
	} else {
		p.AccentBg = MixColors(p.BG, p.FG, 0.15)
	}
	if tc.green != "" {
		p.Trusted = normalizeHex(tc.green)
		p.Accent = p.Trusted
	}
	if tc.red != "" {
		p.Remake = normalizeHex(tc.red)
		p.Error = p.Remake
	}
	if tc.yellow != "" {
		p.Hidden = normalizeHex(tc.yellow)
	}
	return p, true
}

// applyEnvOverrides applies NYAA_TUI_* environment variables
func applyEnvOverrides(p Palette) Palette {
	overrides := []struct {
		env string
		dst *string
	}{
		{"NYAA_TUI_BG", &p.BG},
		{"NYAA_TUI_FG", &p.FG},
		{"NYAA_TUI_MUTED", &p.Muted},
		{"NYAA_TUI_ACCENT", &p.Accent},
		{"NYAA_TUI_TRUSTED", &p.Trusted},
		{"NYAA_TUI_REMAKE", &p.Remake},
		{"NYAA_TUI_HIDDEN", &p.Hidden},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = normalizeHex(v)
		}
	}
	return p
}

var (
	hexLong  = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	hexShort = regexp.MustCompile(`^#[0-9a-fA-F]{3}$`)
)

// normalizeHex ensures color is in #rrggbb format. Quoted values and the
// 0xRRGGBB form are accepted; anything else is returned as given.
func normalizeHex(color string) string {
	color = strings.Trim(strings.TrimSpace(color), `"'`)

	if strings.HasPrefix(color, "0x") || strings.HasPrefix(color, "0X") {
		color = "#" + color[2:]
	}
	if !strings.HasPrefix(color, "#") {
		color = "#" + color
	}

	switch {
	case hexLong.MatchString(color):
		return strings.ToLower(color)
	case hexShort.MatchString(color):
		r, g, b := color[1:2], color[2:3], color[3:4]
		return strings.ToLower("#" + r + r + g + g + b + b)
	}
	return color
}

func rgb(hex string) (r, g, b float64, ok bool) {
	hex = normalizeHex(hex)
	if len(hex) != 7 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return float64(v >> 16 & 0xff), float64(v >> 8 & 0xff), float64(v & 0xff), true
}

func toHex(r, g, b float64) string {
	return fmt.Sprintf("#%02x%02x%02x", uint8(r), uint8(g), uint8(b))
}

// dimColor scales the brightness of a hex color by factor
func dimColor(hex string, factor float64) string {
	r, g, b, ok := rgb(hex)
	if !ok {
		return hex
	}
	return toHex(r*factor, g*factor, b*factor)
}

// MixColors blends hex2 into hex1 by t (0 keeps hex1, 1 gives hex2)
func MixColors(hex1, hex2 string, t float64) string {
	r1, g1, b1, ok1 := rgb(hex1)
	r2, g2, b2, ok2 := rgb(hex2)
	if !ok1 || !ok2 {
		return hex1
	}
	mix := func(a, b float64) float64 { return a*(1-t) + b*t }
	return toHex(mix(r1, r2), mix(g1, g2), mix(b1, b2))
}
