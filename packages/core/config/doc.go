// Package config loads hitassert project settings from a JSON file.
//
// The first of .hitassert.config.json, hitassert.config.json, .hitassertrc
// and .hitassertrc.json found in a directory wins. Unset booleans fall back
// to their defaults so command line flags can tell "off" from "not given".
package config
