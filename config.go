// Copyright (c) 2020-present devguard GmbH

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// fileConfig are the defaults an operator can keep in a yaml file
// instead of repeating flags on both ends of the link.
type fileConfig struct {
	Device          string   `yaml:"device"`
	Baud            int      `yaml:"baud"`
	RS485           bool     `yaml:"rs485"`
	ResponseTimeout duration `yaml:"response_timeout"`
	Runs            int      `yaml:"runs"`
}

type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	v, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

func parseConfig(path string) (*fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &fc, nil
}

// load merges the config file under whatever was set explicitly on the
// command line. Flags always win.
func (self *flags) load(cmd *cobra.Command) error {
	if self.config == "" {
		return nil
	}
	fc, err := parseConfig(self.config)
	if err != nil {
		return err
	}

	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		if fl == nil {
			fl = cmd.InheritedFlags().Lookup(name)
		}
		return fl != nil && fl.Changed
	}
	self.apply(fc, changed)
	return nil
}

func (self *flags) apply(fc *fileConfig, changed func(string) bool) {
	if fc.Device != "" && !changed("device") {
		self.device = fc.Device
	}
	if fc.Baud != 0 && !changed("baud") {
		self.baud = fc.Baud
	}
	if fc.RS485 && !changed("rs485") {
		self.rs485 = true
	}
	if fc.ResponseTimeout != 0 && !changed("response-timeout") {
		self.responseTimeout = time.Duration(fc.ResponseTimeout)
	}
	if fc.Runs != 0 && !changed("runs") {
		self.runs = fc.Runs
	}
}
