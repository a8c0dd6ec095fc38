/*
 * minnow - a user-space TCP/IP stack core
 * Copyright (c) 2026 The Minnow Authors
 *
 * Use of this source code is governed by the MIT license found in the
 * LICENSE file at the root of this repository.
 */

// Package config loads the YAML-described interface and route-table
// configuration for a minnow stack instance.
package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// InterfaceConfig describes one network interface to bring up.
type InterfaceConfig struct {
	Name string `yaml:"name"`
	MAC  string `yaml:"mac"`
	IP   string `yaml:"ip"`
}

// RouteConfig describes one routing table entry.
type RouteConfig struct {
	Prefix       string `yaml:"prefix"`
	PrefixLength int    `yaml:"prefix_length"`
	NextHop      string `yaml:"next_hop,omitempty"`
	Interface    string `yaml:"interface"`
}

// StackConfig is the top-level shape of a minnow stack configuration
// file.
type StackConfig struct {
	InitialRTOMs   uint64            `yaml:"initial_rto_ms"`
	StreamCapacity uint64            `yaml:"stream_capacity"`
	TickIntervalMs int64             `yaml:"tick_interval_ms"`
	LogLevel       string            `yaml:"log_level"`
	Interfaces     []InterfaceConfig `yaml:"interfaces"`
	Routes         []RouteConfig     `yaml:"routes"`
}

// defaultStackConfig mirrors the values a minnow stack runs with when a
// field is left unset in the YAML file.
func defaultStackConfig() StackConfig {
	return StackConfig{
		InitialRTOMs:   1000,
		StreamCapacity: 64000,
		TickIntervalMs: 10,
		LogLevel:       "info",
	}
}

// Load reads and parses a StackConfig from path, filling in defaults for
// any field the file leaves unset. A field set explicitly in the file,
// even to zero, overrides its default.
func Load(path string) (StackConfig, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return StackConfig{}, errors.Wrap(err, "config: read file")
	}

	cfg := defaultStackConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return StackConfig{}, errors.Wrap(err, "config: parse yaml")
	}

	if len(cfg.Interfaces) == 0 {
		return StackConfig{}, errors.New("config: at least one interface is required")
	}

	return cfg, nil
}
