package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	items, err := parse(strings.NewReader(`[{"name":"мука","measurement_unit":"г"},{"name":"яйца","measurement_unit":"шт."}]`), ".json")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "мука", items[0].Name)
	assert.Equal(t, "шт.", items[1].MeasurementUnit)

	_, err = parse(strings.NewReader(`[{"name":"соль"}]`), ".json")
	assert.Error(t, err)
}

func TestParseCSV(t *testing.T) {
	items, err := parse(strings.NewReader("sugar, g\n\"salt, sea\",g\n"), ".CSV")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "g", items[0].MeasurementUnit)
	assert.Equal(t, "salt, sea", items[1].Name)

	_, err = parse(strings.NewReader("sugar\n"), ".csv")
	assert.Error(t, err)
}

func TestParseUnsupported(t *testing.T) {
	_, err := parse(strings.NewReader(""), ".xml")
	assert.Error(t, err)
}
