// Package rules ingests rule definitions from TOML and YAML files.
// External definitions are loosely shaped; this package validates them
// at the boundary and hands the engine only well-formed types.Rule
// values. Internal code never sees raw file input.
package rules
