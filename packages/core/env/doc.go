// Package env resolves {{name}} variables in check files.
//
// Variables come from the check file itself, the config file, a .env file
// and the HITASSERT_VAR_ environment prefix, merged in that order of
// increasing precedence by the runner. {{$NAME}} reads the OS environment.
package env
