package pdfutils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigitsString(t *testing.T) {
	assert.Equal(t, "๒๐๒๔", ThaiDigits.String("2024"))
	assert.Equal(t, "วันที่ ๑๕ ต.ค.", ThaiDigits.String("วันที่ 15 ต.ค."))
	assert.Equal(t, "٣.١٤", ArabicIndicDigits.String("3.14"))
	assert.Equal(t, "2024", NoDigits.String("2024"))
}

func TestLocalizeTree(t *testing.T) {
	in := map[string]interface{}{
		"date":  "12/10/2567",
		"count": 3.0,
		"ok":    true,
		"none":  nil,
		"items": []interface{}{"no 1", map[string]interface{}{"room": "401"}},
	}

	out := ThaiDigits.Localize(in).(map[string]interface{})

	assert.Equal(t, "๑๒/๑๐/๒๕๖๗", out["date"])
	assert.Equal(t, 3.0, out["count"])
	assert.Equal(t, true, out["ok"])
	assert.Nil(t, out["none"])

	items := out["items"].([]interface{})
	assert.Len(t, items, 2)
	assert.Equal(t, "no ๑", items[0])
	assert.Equal(t, map[string]interface{}{"room": "๔๐๑"}, items[1])

	// input is left untouched
	assert.Equal(t, "12/10/2567", in["date"])
}

func TestLocalizeIdempotent(t *testing.T) {
	in := []interface{}{"a1", []interface{}{"22", 5}, map[string]interface{}{"k": "x9"}}

	once := ThaiDigits.Localize(in)
	twice := ThaiDigits.Localize(once)

	assert.Equal(t, once, twice)
}

func TestLocalizeTypedContainers(t *testing.T) {
	assert.Equal(t, map[string]string{"n": "๑๒"}, ThaiDigits.Localize(map[string]string{"n": "12"}))
	assert.Equal(t, []string{"๗", "x"}, ThaiDigits.Localize([]string{"7", "x"}))
	assert.Equal(t, json.Number("42"), ThaiDigits.Localize(json.Number("42")))
	assert.Equal(t, []byte("12"), ThaiDigits.Localize([]byte("12")))
	assert.Nil(t, ThaiDigits.Localize(nil))
}

func TestLocalizeJSONKeepsKeyOrder(t *testing.T) {
	in := `{"zeta":"1","alpha":"2","mid":[{"y":"3","b":"4"}],"n":12,"f":1.5,"ok":false,"none":null,"k9":"a\"9"}`

	out, err := ThaiDigits.LocalizeJSON([]byte(in))
	require.NoError(t, err)

	want := `{
  "zeta": "๑",
  "alpha": "๒",
  "mid": [
    {
      "y": "๓",
      "b": "๔"
    }
  ],
  "n": 12,
  "f": 1.5,
  "ok": false,
  "none": null,
  "k9": "a\"๙"
}`
	assert.Equal(t, want, string(out))

	again, err := ThaiDigits.LocalizeJSON(out)
	require.NoError(t, err)
	assert.Equal(t, string(out), string(again))
}

func TestLocalizeJSONRejectsGarbage(t *testing.T) {
	_, err := ThaiDigits.LocalizeJSON([]byte(`{"a": [1, 2`))
	assert.ErrorIs(t, err, ErrMalformedRequest)
}

func TestDigitsByName(t *testing.T) {
	d, ok := DigitsByName("Thai")
	assert.True(t, ok)
	assert.Equal(t, ThaiDigits, d)

	_, ok = DigitsByName("roman")
	assert.False(t, ok)
}
