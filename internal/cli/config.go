//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/abakum/serialport"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Configuration keys, shared by flags, environment and config file.
const (
	keyConfig      = "config"
	keyLogLevel    = "log-level"
	keyPort        = "port"
	keyBaud        = "baud"
	keyDataBits    = "data-bits"
	keyParity      = "parity"
	keyStopBits    = "stop-bits"
	keyFlowControl = "flow-control"
	keyFraming     = "framing"
	keyTimeout     = "timeout"
)

const envPrefix = "SERIALPORT"

// portConfig holds the line settings a command opens its port with.
type portConfig struct {
	Port        string                 `mapstructure:"port"`
	Baud        uint32                 `mapstructure:"baud"`
	DataBits    int                    `mapstructure:"data-bits"`
	Parity      serialport.Parity      `mapstructure:"parity"`
	StopBits    int                    `mapstructure:"stop-bits"`
	FlowControl serialport.FlowControl `mapstructure:"flow-control"`
	Framing     framing                `mapstructure:"framing"`
	Timeout     time.Duration          `mapstructure:"timeout"`
}

// addPortFlags registers the line settings as persistent flags.
func addPortFlags(flags *pflag.FlagSet) {
	flags.String(keyConfig, "", "config file (default is $HOME/.serialport.yaml)")
	flags.String(keyLogLevel, "info", "log level: panic, fatal, error, warn, info, debug or trace")
	flags.StringP(keyPort, "p", "", "serial port to use, e.g. /dev/ttyUSB0 or COM3")
	flags.Uint32P(keyBaud, "b", 9600, "baud rate")
	flags.Int(keyDataBits, 8, "data bits (5, 6, 7 or 8)")
	flags.String(keyParity, "none", "parity: none, odd, even, mark or space")
	flags.Int(keyStopBits, 1, "stop bits (1 or 2)")
	flags.StringP(keyFlowControl, "f", "none", "flow control: none, software or hardware")
	flags.String(keyFraming, "", "framing shorthand overriding data bits, parity and stop bits, e.g. 8N1")
	flags.DurationP(keyTimeout, "t", time.Second, "read and write timeout")
}

// newViper builds the configuration from the flags, the SERIALPORT_*
// environment and the config file, in decreasing priority.
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile := v.GetString(keyConfig); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return v, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return v, nil
	}
	cfgFile := filepath.Join(home, ".serialport.yaml")
	if _, err := os.Stat(cfgFile); err != nil {
		return v, nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return v, nil
}

// decodeHook turns the strings coming from flags, environment and config
// files into settings types and durations.
// framing is a shorthand like 8N1. YAML reads some of them, 7e2 or 8E1,
// as numbers, so only strings are accepted.
type framing string

func framingHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(framing("")) || from.Kind() == reflect.String {
		return data, nil
	}
	return nil, fmt.Errorf("framing %v is not a string, quote it in the config file: framing: \"8N1\"", data)
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		framingHook,
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	)
}

func loadPortConfig(v *viper.Viper) (portConfig, error) {
	var cfg portConfig
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// builder validates the configuration and converts it into a port
// Builder. path overrides the configured port when not empty.
func (c portConfig) builder(path string) (serialport.Builder, error) {
	if path == "" {
		path = c.Port
	}
	if path == "" {
		return serialport.Builder{}, errors.New("no serial port given, use --port or an argument")
	}

	dataBits, err := serialport.DataBitsFromInt(c.DataBits)
	if err != nil {
		return serialport.Builder{}, err
	}
	stopBits, err := serialport.StopBitsFromInt(c.StopBits)
	if err != nil {
		return serialport.Builder{}, err
	}
	parity := c.Parity
	if c.Framing != "" {
		if dataBits, parity, stopBits, err = serialport.ParseFraming(strings.ToUpper(string(c.Framing))); err != nil {
			return serialport.Builder{}, err
		}
	}

	return serialport.New(path, c.Baud).
		DataBits(dataBits).
		Parity(parity).
		StopBits(stopBits).
		FlowControl(c.FlowControl).
		Timeout(c.Timeout), nil
}
