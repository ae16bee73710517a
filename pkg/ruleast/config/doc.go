/*
Package config loads daemon settings from YAML or JSON files.

# Overview

Config wraps the decoded map[string]any and exposes typed accessors that
fall back to a default when a key is missing or holds the wrong type.
Settings is the typed view the ruleastd daemon runs from.

# Basic Usage

	s, err := config.Load("ruleastd.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(s.Addr, s.DBPath, s.ShutdownTimeout)

An empty path yields Defaults().

# File Format

	addr: ":8080"
	db_path: rules.db
	compress: true
	log_level: debug    # debug, info, warn, error
	log_format: text    # json or text
	metrics: true
	tracing: false
	shutdown_timeout: 5s

Durations accept Go duration strings or a number of seconds.
*/
package config
