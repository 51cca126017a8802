package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DTPP_CYCLE", "2301")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://soa.smext.faa.gov/apra/cifp/chart?edition=current", cfg.APRAURL)
	assert.Empty(t, cfg.CIFPPath)
	assert.Equal(t, "https://aeronav.faa.gov/d-tpp", cfg.DTPPBaseURL)
	assert.Equal(t, "2301", cfg.DTPPCycle)
	assert.Equal(t, 120*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 24*time.Hour, cfg.RefreshInterval)
	assert.Equal(t, "data", cfg.ExportDir)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "airport-directory", cfg.KafkaAirportTopic)
	assert.Equal(t, "approach-chart-links", cfg.KafkaApproachTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("APRA_URL", "http://localhost:8081/apra")
	t.Setenv("CIFP_PATH", "/tmp/FAACIFP18")
	t.Setenv("DTPP_BASE_URL", "http://localhost:8081/d-tpp")
	t.Setenv("DTPP_CYCLE", "2213")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("REFRESH_INTERVAL", "1h")
	t.Setenv("EXPORT_DIR", "/var/lib/charts")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_AIRPORT_TOPIC", "custom-airports")
	t.Setenv("KAFKA_APPROACH_TOPIC", "custom-approaches")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://localhost:8081/apra", cfg.APRAURL)
	assert.Equal(t, "/tmp/FAACIFP18", cfg.CIFPPath)
	assert.Equal(t, "http://localhost:8081/d-tpp", cfg.DTPPBaseURL)
	assert.Equal(t, "2213", cfg.DTPPCycle)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, time.Hour, cfg.RefreshInterval)
	assert.Equal(t, "/var/lib/charts", cfg.ExportDir)
	assert.True(t, cfg.KafkaEnabled, "setting brokers enables the kafka sink")
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-airports", cfg.KafkaAirportTopic)
	assert.Equal(t, "custom-approaches", cfg.KafkaApproachTopic)
}

func TestLoad_KafkaDisabledExplicitly(t *testing.T) {
	t.Setenv("DTPP_CYCLE", "2301")
	t.Setenv("KAFKA_BROKERS", "broker1:9092")
	t.Setenv("KAFKA_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing cycle",
			env:  map[string]string{},
			want: "DTPP_CYCLE is required",
		},
		{
			name: "kafka enabled without brokers",
			env:  map[string]string{"DTPP_CYCLE": "2301", "KAFKA_ENABLED": "true"},
			want: "KAFKA_BROKERS",
		},
		{
			name: "no sink at all",
			env:  map[string]string{"DTPP_CYCLE": "2301", "EXPORT_DIR": ""},
			want: "no sink configured",
		},
		{
			name: "bad shutdown timeout",
			env:  map[string]string{"DTPP_CYCLE": "2301", "SHUTDOWN_TIMEOUT": "soon"},
			want: "invalid SHUTDOWN_TIMEOUT",
		},
		{
			name: "bad refresh interval",
			env:  map[string]string{"DTPP_CYCLE": "2301", "REFRESH_INTERVAL": "-1h"},
			want: "invalid REFRESH_INTERVAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
