package graphql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		check   func(t *testing.T, c Config)
	}{
		{
			name:   "empty config gets defaults",
			config: Config{},
			check: func(t *testing.T, c Config) {
				assert.Equal(t, ":8080", c.BindAddress)
				assert.Equal(t, "/graphql", c.Path)
				assert.Equal(t, 30*time.Second, c.Timeout())
				assert.Equal(t, DefaultMaxQueryDepth, c.MaxQueryDepth)
			},
		},
		{
			name:   "default config is valid",
			config: DefaultConfig(),
			check: func(t *testing.T, c Config) {
				assert.Equal(t, []string{"*"}, c.CORSOrigins)
			},
		},
		{
			name:    "path without leading slash",
			config:  Config{Path: "graphql"},
			wantErr: true,
		},
		{
			name:    "unparseable timeout",
			config:  Config{TimeoutStr: "eventually"},
			wantErr: true,
		},
		{
			name:    "timeout below minimum",
			config:  Config{TimeoutStr: "50ms"},
			wantErr: true,
		},
		{
			name:    "timeout above maximum",
			config:  Config{TimeoutStr: "10m"},
			wantErr: true,
		},
		{
			name:    "depth above ceiling",
			config:  Config{MaxQueryDepth: 51},
			wantErr: true,
		},
		{
			name:    "negative depth",
			config:  Config{MaxQueryDepth: -1},
			wantErr: true,
		},
		{
			name:   "cors enabled fills wildcard origin",
			config: Config{EnableCORS: true},
			check: func(t *testing.T, c Config) {
				assert.Equal(t, []string{"*"}, c.CORSOrigins)
			},
		},
		{
			name:   "custom values survive validation",
			config: Config{BindAddress: ":9000", Path: "/api/graphql", TimeoutStr: "5s", MaxQueryDepth: 12},
			check: func(t *testing.T, c Config) {
				assert.Equal(t, ":9000", c.BindAddress)
				assert.Equal(t, "/api/graphql", c.Path)
				assert.Equal(t, 5*time.Second, c.Timeout())
				assert.Equal(t, 12, c.MaxQueryDepth)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, tt.config)
			}
		})
	}
}
