package compendium

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputsOmitUnsetFields(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"empty update", SpellInput{}, `{}`},
		{"value", SpellInput{AttackType: Value("melee")}, `{"attack_type":"melee"}`},
		{"explicit null", SubclassInput{Description: Null[string]()}, `{"description":null}`},
		{"zero int is sent", ClassInput{HitDie: Ptr(0)}, `{"hit_die":0}`},
		{"empty list is sent", RaceInput{StartingProficiencies: &[]int64{}}, `{"starting_proficiencies":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestParseErrorResponse(t *testing.T) {
	body := `{"error":{"code":"INVALID_INPUT","message":"validation failed","details":{"index":["classes with this index already exists."]}},"meta":{"request_id":"r1"}}`
	err := parseErrorResponse(400, []byte(body))
	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, map[string][]string{"index": {"classes with this index already exists."}}, err.Fields)
	assert.True(t, IsInvalid(err))
	assert.False(t, IsNotFound(err))

	notFound := parseErrorResponse(404, []byte(`{"error":{"code":"NOT_FOUND","message":"Not found."}}`))
	assert.Nil(t, notFound.Fields)
	assert.True(t, IsNotFound(notFound))
	assert.EqualError(t, notFound, "compendium: NOT_FOUND (404): Not found.")
}
