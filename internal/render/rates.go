package render

import (
	_ "embed"
	"fmt"

	"github.com/goccy/go-yaml"
)

//go:embed rates.yaml
var ratesYAML []byte

type fxConfig struct {
	Symbols map[string]string  `yaml:"symbols"`
	Rates   map[string]float64 `yaml:"rates"`
}

var fx fxConfig

func init() {
	if err := yaml.Unmarshal(ratesYAML, &fx); err != nil {
		panic(fmt.Sprintf("render: bad embedded rates table: %v", err))
	}
}

// ConversionRate resolves a rate between two currency codes. A positive
// override always wins;
// otherwise the static pair table answers. The second return is false when
// no rate is resolvable, which callers treat as "omit the conversion line".
func ConversionRate(from, to string, override float64) (float64, bool) {
	if from == "" || to == "" || from == to {
		return 1, true
	}
	if override > 0 {
		return override, true
	}
	rate, ok := fx.Rates[from+"_"+to]
	return rate, ok
}

func symbolFor(code string) string {
	return fx.Symbols[code]
}
