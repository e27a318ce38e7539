package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cliFlags = []string{"-a", "-d", "-t", "-i", "-l", "-log-file", "-offline-validation"}

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "config stage keeps only its flag",
			args:    []string{"-c", "brokerdesk.json", "-a", "http://localhost:5000/api"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "brokerdesk.json"},
		},
		{
			name:    "flag stage drops the config flag",
			args:    []string{"-c", "brokerdesk.json", "-a", "http://localhost:5000/api", "-d", "/tmp/bd.db"},
			allowed: cliFlags,
			want:    []string{"-a", "http://localhost:5000/api", "-d", "/tmp/bd.db"},
		},
		{
			name:    "equals form",
			args:    []string{"-offline-validation=false", "-t=5s", "--unknown=1"},
			allowed: cliFlags,
			want:    []string{"-offline-validation=false", "-t=5s"},
		},
		{
			name:    "boolean flag followed by another flag takes no value",
			args:    []string{"-offline-validation", "-l", "debug"},
			allowed: cliFlags,
			want:    []string{"-offline-validation", "-l", "debug"},
		},
		{
			name:    "flag without value at the end",
			args:    []string{"-d"},
			allowed: cliFlags,
			want:    []string{"-d"},
		},
		{
			name:    "equals value that looks like a flag",
			args:    []string{"-log-file=-weird.log"},
			allowed: cliFlags,
			want:    []string{"-log-file=-weird.log"},
		},
		{
			name:    "positional arguments are ignored",
			args:    []string{"hash-password", "-i", "30"},
			allowed: cliFlags,
			want:    []string{"-i", "30"},
		},
		{
			name:    "repeated flag preserved in order",
			args:    []string{"-a", "http://one", "-a", "http://two"},
			allowed: cliFlags,
			want:    []string{"-a", "http://one", "-a", "http://two"},
		},
		{
			name:    "empty args",
			args:    nil,
			allowed: cliFlags,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigPath(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short flag", []string{"-c", "/etc/brokerdesk.json"}, "/etc/brokerdesk.json"},
		{"long flag", []string{"-config", "/etc/brokerdesk.json"}, "/etc/brokerdesk.json"},
		{"equals form among other flags", []string{"-a", "http://api", "--config=/etc/bd.json"}, "/etc/bd.json"},
		{"absent", []string{"-a", "http://api", "-d", "bd.db"}, ""},
		{"last wins", []string{"-c", "/one.json", "-config", "/two.json"}, "/two.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigPath(tt.args))
		})
	}
}
