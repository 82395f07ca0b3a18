package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	allowed := []string{"-c", "--config", "-e"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"separate value", []string{"-c", "conf.json", "-a", "https://api"}, []string{"-c", "conf.json"}},
		{"equals form", []string{"--config=alt.json", "-l", "debug"}, []string{"--config=alt.json"}},
		{"order preserved", []string{"--config=first.json", "-x", "1", "-c", "second.json"}, []string{"--config=first.json", "-c", "second.json"}},
		{"unknown only", []string{"-x", "1", "--y=2", "positional"}, []string{}},
		{"dangling flag", []string{"-c"}, []string{"-c"}},
		{"next token is a flag", []string{"-c", "-e", "prod.env"}, []string{"-c", "-e", "prod.env"}},
		{"value may start with dash after equals", []string{"--config=--weird.json"}, []string{"--config=--weird.json"}},
		{"stops at double dash", []string{"-e", "a.env", "--", "-c", "x.json"}, []string{"-e", "a.env"}},
		{"empty", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, allowed))
		})
	}
}

func TestLookupString(t *testing.T) {
	args := []string{"-a", "https://api", "-d", "first.db", "--d=second.db", "-l", "warn"}

	assert.Equal(t, "second.db", LookupString(args, "d"), "last value wins")
	assert.Equal(t, "warn", LookupString(args, "l", "level"))
	assert.Empty(t, LookupString(args, "z"))
}

func TestConfigFilePath(t *testing.T) {
	assert.Equal(t, "/etc/payslips.json", ConfigFilePath([]string{"-c", "/etc/payslips.json"}))
	assert.Equal(t, "long.json", ConfigFilePath([]string{"-config", "long.json"}))
	assert.Equal(t, "eq.json", ConfigFilePath([]string{"--config=eq.json"}))
	assert.Equal(t, "2.json", ConfigFilePath([]string{"-c", "1.json", "-config", "2.json"}))
	assert.Empty(t, ConfigFilePath([]string{"-x", "1"}))
}

func TestEnvFilePath(t *testing.T) {
	assert.Equal(t, "prod.env", EnvFilePath([]string{"-a", "http://x", "-e", "prod.env"}))
	assert.Equal(t, "dev.env", EnvFilePath([]string{"-env=dev.env"}))
	assert.Empty(t, EnvFilePath([]string{"-c", "conf.json"}))
}
