// Package flags provides helpers for binding constrained flags to Cobra commands.
package flags

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

const (
	choicePlaceholderPrefix = "<"
	choicePlaceholderSuffix = ">"
	choiceSeparatorLiteral  = "|"
	choiceUsageEmptyTemplate = "`%s`"
	choiceUsageFullTemplate  = "`%s` %s"
	choiceInvalidTemplate = "invalid value %q, expected one of %s"
	choiceTypeName        = "choice"
)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := buildChoicePlaceholder(defaultChoice, choices)
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// AddChoiceFlag registers a string flag restricted to choices. Values are
// matched case-insensitively and stored in their lower-case form.
func AddChoiceFlag(flagSet *pflag.FlagSet, target *string, name string, defaultChoice string, choices []string, description string) {
	value := &choiceFlagValue{target: target, choices: normalizeChoices(choices)}
	*target = strings.ToLower(strings.TrimSpace(defaultChoice))
	flagSet.Var(value, name, FormatChoiceUsage(defaultChoice, choices, description))
}

type choiceFlagValue struct {
	target  *string
	choices []string
}

func (value *choiceFlagValue) Set(rawValue string) error {
	normalized := strings.ToLower(strings.TrimSpace(rawValue))
	if !slices.Contains(value.choices, normalized) {
		return fmt.Errorf(choiceInvalidTemplate, rawValue, strings.Join(value.choices, choiceSeparatorLiteral))
	}
	*value.target = normalized
	return nil
}

func (value *choiceFlagValue) String() string {
	if value.target == nil {
		return ""
	}
	return *value.target
}

func (value *choiceFlagValue) Type() string {
	return choiceTypeName
}

func buildChoicePlaceholder(defaultChoice string, choices []string) string {
	highlightedChoices := highlightDefaultChoice(defaultChoice, choices)
	return choicePlaceholderPrefix + strings.Join(highlightedChoices, choiceSeparatorLiteral) + choicePlaceholderSuffix
}

func normalizeChoices(choices []string) []string {
	normalized := make([]string, 0, len(choices))
	for _, choice := range choices {
		lowered := strings.ToLower(strings.TrimSpace(choice))
		if len(lowered) == 0 || slices.Contains(normalized, lowered) {
			continue
		}
		normalized = append(normalized, lowered)
	}
	return normalized
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	normalizedChoices := normalizeChoices(choices)
	highlighted := make([]string, 0, len(normalizedChoices))
	for _, choice := range normalizedChoices {
		if choice == normalizedDefault {
			choice = strings.ToUpper(choice)
		}
		highlighted = append(highlighted, choice)
	}
	return highlighted
}
