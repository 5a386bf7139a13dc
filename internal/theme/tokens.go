package theme

// Design tokens served to the dashboard front end. Loaded once at process
// start; handlers must treat everything here as read-only.

type Palette struct {
	Background string `json:"background"`
	Surface    string `json:"surface"`
	Border     string `json:"border"`
	TextMain   string `json:"text_main"`
	TextMuted  string `json:"text_muted"`
	Accent     string `json:"accent"`
	Profit     string `json:"profit"`
	Loss       string `json:"loss"`
	Warning    string `json:"warning"`
}

type Typography struct {
	FontFamily string `json:"font_family"`
	MonoFamily string `json:"mono_family"`
	BaseSize   int    `json:"base_size"`
	HeaderSize int    `json:"header_size"`
}

type Tokens struct {
	Mode        string            `json:"mode"`
	Palette     Palette           `json:"palette"`
	Typography  Typography        `json:"typography"`
	Spacing     []int             `json:"spacing"`
	StateColors map[string]string `json:"state_colors"`
	Tickers     []string          `json:"tickers"`
}

var dark = Tokens{
	Mode: "dark",
	Palette: Palette{
		Background: "#0b0e14",
		Surface:    "#151a23",
		Border:     "#232b38",
		TextMain:   "#e6e9ef",
		TextMuted:  "#8a93a5",
		Accent:     "#4f8cff",
		Profit:     "#2ecc71",
		Loss:       "#e74c3c",
		Warning:    "#f1c40f",
	},
	Typography: Typography{
		FontFamily: "Inter, sans-serif",
		MonoFamily: "JetBrains Mono, monospace",
		BaseSize:   14,
		HeaderSize: 20,
	},
	Spacing:     []int{4, 8, 12, 16, 24, 32, 48},
	StateColors: stateColors,
	Tickers:     tickers,
}

var light = Tokens{
	Mode: "light",
	Palette: Palette{
		Background: "#f7f8fa",
		Surface:    "#ffffff",
		Border:     "#dde2ea",
		TextMain:   "#1c2330",
		TextMuted:  "#5f6b7f",
		Accent:     "#2f6fe0",
		Profit:     "#1e9e55",
		Loss:       "#d13b2e",
		Warning:    "#c9a410",
	},
	Typography: Typography{
		FontFamily: "Inter, sans-serif",
		MonoFamily: "JetBrains Mono, monospace",
		BaseSize:   14,
		HeaderSize: 20,
	},
	Spacing:     []int{4, 8, 12, 16, 24, 32, 48},
	StateColors: stateColors,
	Tickers:     tickers,
}

var stateColors = map[string]string{
	"waiting":   "#8a93a5",
	"range_set": "#4f8cff",
	"breakout":  "#f1c40f",
	"in_trade":  "#2ecc71",
	"closed":    "#5f6b7f",
	"halted":    "#e74c3c",
}

var tickers = []string{"SPY", "QQQ", "IWM", "AAPL", "MSFT", "NVDA", "TSLA"}

// ForMode returns the token set for the given mode, defaulting to dark.
func ForMode(mode string) Tokens {
	if mode == "light" {
		return light
	}
	return dark
}
