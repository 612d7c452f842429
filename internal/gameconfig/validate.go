package gameconfig

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/ayaka-run/ayaka/internal/wireformat"
)

// Validate performs structural checks beyond what the JSON Schema pass
// catches — duplicate paragraph tags, dangling `next` references, and a
// parseable base_lang — mirroring reglet's internal/config/validation.go
// two-layer approach (structural checks, then schema checks).
func Validate(game *wireformat.Game) error {
	var errs []string

	if game.Title == "" {
		errs = append(errs, "title is required")
	}
	if game.BaseLang == "" {
		errs = append(errs, "base_lang is required")
	} else if _, err := language.Parse(game.BaseLang); err != nil {
		errs = append(errs, fmt.Sprintf("base_lang %q is not a valid locale tag: %v", game.BaseLang, err))
	}
	if game.Plugins.Dir == "" {
		errs = append(errs, "plugins.dir is required")
	}
	if len(game.Paras) == 0 {
		errs = append(errs, "at least one locale under paras is required")
	}
	if _, ok := game.Paras[game.BaseLang]; game.BaseLang != "" && !ok {
		errs = append(errs, fmt.Sprintf("paras has no entry for base_lang %q", game.BaseLang))
	}

	for locale, paras := range game.Paras {
		if err := validateParagraphs(locale, paras); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("game config invalid:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return validateSchema(game)
}

func validateParagraphs(locale string, paras []wireformat.Paragraph) error {
	var errs []string
	seen := make(map[string]bool)
	for _, p := range paras {
		if p.Tag == "" {
			errs = append(errs, fmt.Sprintf("%s: paragraph with empty tag", locale))
			continue
		}
		if seen[p.Tag] {
			errs = append(errs, fmt.Sprintf("%s: duplicate paragraph tag %q", locale, p.Tag))
		}
		seen[p.Tag] = true
	}
	for _, p := range paras {
		if p.Next != "" && !seen[p.Next] {
			errs = append(errs, fmt.Sprintf("%s: paragraph %q has dangling next %q", locale, p.Tag, p.Next))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
