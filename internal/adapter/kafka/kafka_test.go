package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/approach-chart-etl/internal/domain"
)

func TestAirportMessage(t *testing.T) {
	msg, err := airportMessage(domain.Airport{
		Identifier: "KDEN",
		ICAOCode:   "K2",
		Name:       "DENVER INTL",
		Latitude:   39.8607805,
		Longitude:  -104.6720527,
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("KDEN"), msg.Key)
	assert.Contains(t, string(msg.Value), `"identifier":"KDEN"`)
	assert.Contains(t, string(msg.Value), `"name":"DENVER INTL"`)
	assert.Empty(t, msg.Headers)
}

func TestApproachMessage_Resolved(t *testing.T) {
	now := time.Date(2023, 1, 26, 12, 0, 0, 0, time.UTC)
	msg, err := approachMessage(domain.ResolvedApproach{
		ApproachFix: domain.ApproachFix{
			AirportIdentifier:  "KDEN",
			ApproachIdentifier: "I16L",
			FixIdentifier:      "HIMOM",
		},
		Resolved:      true,
		ChartTitle:    "ILS OR LOC RWY 16L",
		ChartFilename: "2301/00100I16L.PDF",
		ProcessedAt:   now,
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("KDEN/I16L"), msg.Key)
	assert.Contains(t, string(msg.Value), `"chart_title":"ILS OR LOC RWY 16L"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "resolved", msg.Headers[0].Key)
	assert.Equal(t, []byte("true"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestApproachMessage_Unresolved(t *testing.T) {
	msg, err := approachMessage(domain.ResolvedApproach{
		ApproachFix: domain.ApproachFix{
			AirportIdentifier:  "KAAA",
			ApproachIdentifier: "Z99",
		},
		Resolved: false,
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("KAAA/Z99"), msg.Key)
	assert.Equal(t, []byte("false"), msg.Headers[0].Value)
	assert.NotContains(t, string(msg.Value), "chart_title", "omitted when unresolved")
}
