// Package config loads, normalizes, and validates evalai configuration.
//
// Settings are layered from repository defaults, an optional TOML file, and
// EVALAI_* environment variables. Command-line flags are applied last by the
// cmd package. The per-component structs are the same ones the diagram,
// keywords, and quizgen packages consume, so a loaded Config can be handed
// straight to their constructors.
package config
