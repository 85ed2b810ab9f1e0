// Package source provides rule sources for the screening engine.
//
// A rule source is responsible for loading a rule set and watching it for
// changes. This package provides file-based and in-memory implementations.
//
// # File Source
//
// The file source loads rules from YAML files on disk and watches for
// changes with fsnotify. Rapid write bursts (editor saves, atomic renames)
// are debounced into a single reload event:
//
//	src := source.NewFileSource("rules/", logger)
//	rs, err := src.LoadRules(ctx)
//
//	events, err := src.Watch(ctx)
//	for event := range events {
//	    // reload and swap the rule set
//	}
//
// # In-Memory Source
//
// The in-memory source is useful for testing:
//
//	src := source.NewMemorySource(ruleSet)
//	rs, err := src.LoadRules(ctx)
package source
