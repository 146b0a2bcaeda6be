package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/gregLibert/apdu/pkg/octet"
)

type testCase struct {
	title               string
	src                 string
	expect              *Config
	expectParseError    bool
	expectValidateError string
}

var testCases = []testCase{
	{
		title: "Valid",
		src: `---
reader:
  index: 1
  protocol: t0
log:
  level: debug
script:
  - name: select PSE
    command: 00 A4 04 00 0E 315041592E5359532E4444463031 00
    expect: "9000"
  - command: 00B2010C00
`,
		expect: &Config{
			Reader: ReaderConfig{Index: 1, Protocol: "t0"},
			Log:    LogConfig{Level: "debug", Format: "console"},
			Script: []Step{
				{
					Name:    "select PSE",
					Command: octet.MustHex("00A404000E315041592E5359532E444446303100"),
					Expect:  "9000",
				},
				{Command: octet.MustHex("00B2010C00")},
			},
		},
	},
	{
		title:  "Defaults",
		src:    `---`,
		expect: Default(),
	},
	{
		title:            "Bad hex",
		src:              "script:\n  - command: 00A4Z\n",
		expectParseError: true,
	},
	{
		title: "Unknown protocol",
		src:   "reader:\n  protocol: t2\n",
		expect: &Config{
			Reader: ReaderConfig{Protocol: "t2"},
			Log:    LogConfig{Level: "info", Format: "console"},
		},
		expectValidateError: "Key: 'Config.Reader.Protocol' Error:Field validation for 'Protocol' failed on the 'oneof' tag",
	},
	{
		title: "Negative reader index",
		src:   "reader:\n  index: -1\n",
		expect: &Config{
			Reader: ReaderConfig{Index: -1, Protocol: "auto"},
			Log:    LogConfig{Level: "info", Format: "console"},
		},
		expectValidateError: "Key: 'Config.Reader.Index' Error:Field validation for 'Index' failed on the 'gte' tag",
	},
	{
		title: "Missing command",
		src:   "script:\n  - name: empty\n",
		expect: &Config{
			Reader: ReaderConfig{Protocol: "auto"},
			Log:    LogConfig{Level: "info", Format: "console"},
			Script: []Step{{Name: "empty"}},
		},
		expectValidateError: "Key: 'Config.Script[0].Command' Error:Field validation for 'Command' failed on the 'required' tag",
	},
	{
		title: "Bad expected status",
		src:   "script:\n  - command: 00B0000000\n    expect: \"90\"\n",
		expect: &Config{
			Reader: ReaderConfig{Protocol: "auto"},
			Log:    LogConfig{Level: "info", Format: "console"},
			Script: []Step{{Command: octet.MustHex("00B0000000"), Expect: "90"}},
		},
		expectValidateError: "Key: 'Config.Script[0].Expect' Error:Field validation for 'Expect' failed on the 'len' tag",
	},
}

func TestConfig(t *testing.T) {
	for _, test := range testCases {
		t.Run(test.title, func(t *testing.T) {
			result := Default()
			err := result.Parse([]byte(test.src))
			if test.expectParseError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.expect, result)

			err = Validator().Struct(result)
			if test.expectValidateError != "" {
				require.EqualError(t, err, test.expectValidateError)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "smartcard.yaml")
	require.NoError(t, os.WriteFile(file, []byte("log:\n  level: warn\n"), 0o600))

	c, err := Load(file)
	require.NoError(t, err)
	require.Equal(t, "warn", c.Log.Level)
	require.Equal(t, "auto", c.Reader.Protocol)

	t.Setenv(LogLevelEnv, "DEBUG")
	c, err = Load(file)
	require.NoError(t, err)
	require.Equal(t, "debug", c.Log.Level)

	t.Setenv(LogLevelEnv, "verbose")
	_, err = Load(file)
	require.Error(t, err)
}

func TestLoad_NoFile(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), c)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLogConfig_Logger(t *testing.T) {
	logger, err := LogConfig{Level: "warn", Format: "json"}.Logger()
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = LogConfig{Level: "loud", Format: "console"}.Logger()
	require.Error(t, err)
}
