package gameconfig

import "github.com/ayaka-run/ayaka/internal/wireformat"

// yamlGame is the YAML-decodable shape of a game config (spec.md §6). It
// mirrors wireformat.Game field-for-field except Res, which goccy/go-yaml
// decodes generically (map[string]any) since value.Raw has no YAML
// unmarshal hook; Load converts each entry with value.FromInterface.
type yamlGame struct {
	Title    string                    `yaml:"title"`
	Author   string                    `yaml:"author"`
	BaseLang string                    `yaml:"base_lang"`
	Plugins  yamlPlugins               `yaml:"plugins"`
	Props    map[string]string         `yaml:"props"`
	Paras    map[string][]wireformat.Paragraph `yaml:"paras"`
	Res      map[string]map[string]any `yaml:"res"`
}

type yamlPlugins struct {
	Dir     string   `yaml:"dir"`
	Modules []string `yaml:"modules"`
}
