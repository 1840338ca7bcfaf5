package graph

import (
	"fmt"
	"sort"
)

type optionKind int

const (
	kindBool optionKind = iota
	kindString
	kindStringList
)

// recognizedOptions is the allowlist of compiler options a runtime
// emit honours, with the JSON kind each value must carry. Anything
// outside this set is reported as ignored rather than rejected.
var recognizedOptions = map[string]optionKind{
	"checkJs":                      kindBool,
	"emitDecoratorMetadata":        kindBool,
	"experimentalDecorators":       kindBool,
	"importsNotUsedAsValues":       kindString,
	"inlineSourceMap":              kindBool,
	"inlineSources":                kindBool,
	"jsx":                          kindString,
	"jsxFactory":                   kindString,
	"jsxFragmentFactory":           kindString,
	"keyofStringsOnly":             kindBool,
	"lib":                          kindStringList,
	"noFallthroughCasesInSwitch":   kindBool,
	"noImplicitAny":                kindBool,
	"noImplicitReturns":            kindBool,
	"noImplicitThis":               kindBool,
	"noImplicitUseStrict":          kindBool,
	"noUncheckedIndexedAccess":     kindBool,
	"noUnusedLocals":               kindBool,
	"noUnusedParameters":           kindBool,
	"removeComments":               kindBool,
	"sourceMap":                    kindBool,
	"strict":                       kindBool,
	"strictBindCallApply":          kindBool,
	"strictFunctionTypes":          kindBool,
	"strictNullChecks":             kindBool,
	"strictPropertyInitialization": kindBool,
	"target":                       kindString,
}

// analyzeCompilerOptions splits user options into the recognised set
// (validated by kind) and an ignored list. Invalid values are fatal;
// unknown keys are not.
func analyzeCompilerOptions(options map[string]any) ([]string, error) {
	if len(options) == 0 {
		return nil, nil
	}

	var ignored []string
	for key, value := range options {
		kind, ok := recognizedOptions[key]
		if !ok {
			ignored = append(ignored, key)
			continue
		}
		if err := validateOptionValue(key, kind, value); err != nil {
			return nil, err
		}
	}
	sort.Strings(ignored)
	return ignored, nil
}

func validateOptionValue(key string, kind optionKind, value any) error {
	switch kind {
	case kindBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("compiler option %q expects a boolean, got %T", key, value)
		}
	case kindString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("compiler option %q expects a string, got %T", key, value)
		}
	case kindStringList:
		list, ok := value.([]any)
		if !ok {
			if _, isStrings := value.([]string); isStrings {
				return nil
			}
			return fmt.Errorf("compiler option %q expects a list of strings, got %T", key, value)
		}
		for _, item := range list {
			if _, ok := item.(string); !ok {
				return fmt.Errorf("compiler option %q expects a list of strings, got %T element", key, item)
			}
		}
	}
	return nil
}
