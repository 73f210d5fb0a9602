package keycase

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCamelKey(t *testing.T) {
	cases := map[string]string{
		"medication_id":      "medicationId",
		"frequency_per_day":  "frequencyPerDay",
		"name":               "name",
		"_id":                "Id",
		"a__b":               "a_B",
		"dose_1":             "dose_1",
		"trailing_":          "trailing_",
		"already_camelCase":  "alreadyCamelCase",
		"scheduled_datetime": "scheduledDatetime",
	}
	for in, want := range cases {
		assert.Equal(t, want, CamelKey(in), "input %q", in)
	}
}

func TestSnakeKey(t *testing.T) {
	assert.Equal(t, "medication_id", SnakeKey("medicationId"))
	assert.Equal(t, "is_active", SnakeKey("isActive"))
	assert.Equal(t, "name", SnakeKey("name"))
	assert.Equal(t, "_a_p_i", SnakeKey("API"))
}

func TestToCamel_NestedPayload(t *testing.T) {
	var in any
	require.NoError(t, json.Unmarshal([]byte(`{
		"message": "ok",
		"count": 1,
		"medications": [
			{"medication_id": "m1", "dosage_amount": 2.5, "special_instructions": null, "is_active": true}
		],
		"patient": {"first_name": "Ada", "date_of_birth": "1990-01-01"}
	}`), &in))

	out, err := ToCamel(in)
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, "ok", m["message"])
	assert.Equal(t, float64(1), m["count"])

	med := m["medications"].([]any)[0].(map[string]any)
	assert.Equal(t, "m1", med["medicationId"])
	assert.Equal(t, 2.5, med["dosageAmount"])
	assert.Nil(t, med["specialInstructions"])
	assert.Contains(t, med, "specialInstructions")
	assert.Equal(t, true, med["isActive"])

	p := m["patient"].(map[string]any)
	assert.Equal(t, "Ada", p["firstName"])
	assert.Equal(t, "1990-01-01", p["dateOfBirth"])
}

func TestToCamel_DoesNotMutateInput(t *testing.T) {
	in := map[string]any{"patient_id": "p1", "items": []any{map[string]any{"day_of_week": 1}}}

	_, err := ToCamel(in)
	require.NoError(t, err)

	assert.Contains(t, in, "patient_id")
	assert.Contains(t, in["items"].([]any)[0].(map[string]any), "day_of_week")
}

func TestToCamel_Scalars(t *testing.T) {
	for _, v := range []any{nil, "x_y", 3.0, true} {
		out, err := ToCamel(v)
		require.NoError(t, err)
		assert.Equal(t, v, out)
	}
}

func TestToCamel_IdempotentWithoutUnderscores(t *testing.T) {
	in := map[string]any{"medicationId": "m1", "nested": map[string]any{"timeOfDay": "08:00:00"}}

	once, err := ToCamel(in)
	require.NoError(t, err)
	twice, err := ToCamel(once)
	require.NoError(t, err)

	assert.Equal(t, in, once)
	assert.Equal(t, once, twice)
}

func TestToCamel_CycleGuard(t *testing.T) {
	cyclic := map[string]any{}
	cyclic["self_ref"] = cyclic

	_, err := ToCamel(cyclic)
	assert.ErrorIs(t, err, ErrTooDeep)
}

func TestToSnake_RoundTripSimpleKeys(t *testing.T) {
	in := map[string]any{"patient_id": "p1", "dosage_amount": 1.0}

	camel, err := ToCamel(in)
	require.NoError(t, err)
	back, err := ToSnake(camel)
	require.NoError(t, err)

	assert.Equal(t, in, back)
}
