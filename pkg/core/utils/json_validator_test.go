package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSmartParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  sample
	}{
		{"standard json", `{"name":"a","count":1}`, sample{"a", 1}},
		{"trailing comma", `{"name":"b","count":2,}`, sample{"b", 2}},
		{"single quotes", `{'name':'c','count':3}`, sample{"c", 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got sample
			_, err := SmartParse(tt.input, &got)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSmartParse_RequiresPointer(t *testing.T) {
	_, err := SmartParse(`{}`, sample{})
	assert.Error(t, err)

	var nilPtr *sample
	_, err = SmartParse(`{}`, nilPtr)
	assert.Error(t, err)
}

func TestSmartParse_FailureLeavesZeroValue(t *testing.T) {
	got := sample{Name: "stale"}
	_, err := SmartParse(`[1, 2, 3]`, &got)
	assert.Error(t, err)
	assert.Equal(t, sample{}, got)
}
