package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsStartupErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "bad configuration",
			env:     map[string]string{"STORAGE_DRIVER": "oracle"},
			wantErr: "failed to load configuration",
		},
		{
			name: "storage unreachable",
			env: map[string]string{
				"STORAGE_DRIVER": "postgres",
				"DATABASE_URL":   "host=127.0.0.1 port=1 user=kizuki dbname=kizuki sslmode=disable connect_timeout=1",
				"LOG_LEVEL":      "disabled",
			},
			wantErr: "failed to open postgres storage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			err := run()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
