// Package config resolves a debugging session's configuration from CLI
// flags, environment variables, and an optional ~/.vdebugger.yaml, the
// way Manu343726-cucaracha's cmd/root.go binds .cucaracha.yaml with
// viper. The debugger's own flag surface is small, so this layer stays
// thin: one default policy (disable ASLR) and one optional path (a
// session log file).
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Session is the resolved configuration for one debugging session.
type Session struct {
	TargetPath string
	PID        int
	NoASLR     bool
	LogFile    string
}

// Load reads ~/.vdebugger.yaml (if present) and environment variables
// prefixed VDEBUGGER_, then layers the explicit CLI flag values on top
// since flags always win over file/env defaults. noASLR is nil when the
// caller's --no-aslr flag was left at its unset state (the caller should
// pass nil only when the flag truly was not specified, e.g. via
// cmd.Flags().Changed), so that the config/env default is free to supply
// false as well as true; a non-nil noASLR always wins outright.
func Load(targetPath string, pid int, noASLR *bool, logFile string) (*Session, error) {
	v := viper.New()
	v.SetDefault("no_aslr", true)
	v.SetEnvPrefix("vdebugger")
	v.AutomaticEnv()

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".vdebugger")
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	sess := &Session{
		TargetPath: targetPath,
		PID:        pid,
		LogFile:    logFile,
	}
	if noASLR != nil {
		sess.NoASLR = *noASLR
	} else {
		sess.NoASLR = v.GetBool("no_aslr")
	}
	if sess.LogFile == "" {
		sess.LogFile = v.GetString("log_file")
	}

	if sess.TargetPath == "" && sess.PID == 0 {
		return nil, fmt.Errorf("either a target path or --pid is required")
	}

	return sess, nil
}
