// Package internal provides the expansion engine behind the extdot tool.
//
// Engine ties the lexer, the extended dot expander and the renderer
// together. It picks the entry point configured by Mode, turns expander
// warnings into Issues, and optionally caches results on disk or re-expands
// files as they change (see StartWatching).
//
// Usage:
//
//	engine, err := internal.NewEngine(internal.EngineOptions{
//	    Options:  extdot.DefaultOptions(),
//	    Mode:     internal.ModeSites,
//	    Hygienic: true,
//	})
//	if err != nil {
//	    // handle error
//	}
//
//	result, err := engine.Run("path/to/file.rs")
//	if err != nil {
//	    // handle error
//	}
//	os.Stdout.Write(result.Output)
//
// This package is intended for internal use within the tool and should not be
// imported by external packages.
package internal
