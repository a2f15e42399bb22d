package config

import (
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/hydrosched/hydrosched/core/hydro"
)

// LoadScenario reads a scheduling scenario from a YAML or JSON file.
// Single-element series are broadcast over the horizon.
func LoadScenario(path string) (hydro.Scenario, error) {
	k := koanf.New(".")
	parser, err := parserFor(path)
	if err != nil {
		return hydro.Scenario{}, err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return hydro.Scenario{}, err
	}
	var spec hydro.ScenarioSpec
	if err := k.UnmarshalWithConf("", &spec, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return hydro.Scenario{}, err
	}
	return spec.Scenario()
}
