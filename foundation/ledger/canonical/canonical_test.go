package canonical_test

import (
	"math"
	"testing"

	"github.com/quarrychain/quarry/foundation/ledger/canonical"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_Marshal(t *testing.T) {
	type table struct {
		name  string
		value any
		exp   string
	}

	tt := []table{
		{
			name: "sorted-keys",
			value: map[string]any{
				"zulu":  "z",
				"alpha": "a",
				"mike":  "m",
			},
			exp: `{"alpha":"a","mike":"m","zulu":"z"}`,
		},
		{
			name: "nested",
			value: map[string]any{
				"outputs": []any{
					map[string]any{"receiver_address": "abc", "amount": 25.0},
				},
				"inputs": []any{},
				"unlock": map[string]any{},
			},
			exp: `{"inputs":[],"outputs":[{"amount":25,"receiver_address":"abc"}],"unlock":{}}`,
		},
		{
			name: "numbers",
			value: map[string]any{
				"whole":    25.0,
				"fraction": 15.5,
				"small":    0.1,
				"count":    3,
				"nonce":    uint64(888108),
			},
			exp: `{"count":3,"fraction":15.5,"nonce":888108,"small":0.1,"whole":25}`,
		},
		{
			name:  "escaping",
			value: map[string]any{"quote\"key": "line\nbreak\tand\\slash"},
			exp:   `{"quote\"key":"line\nbreak\tand\\slash"}`,
		},
	}

	t.Log("Given the need to render values canonically.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling the %s value.", testID, tst.name)
			{
				f := func(t *testing.T) {
					data, err := canonical.Marshal(tst.value)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to marshal the value: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to marshal the value.", success, testID)

					if string(data) != tst.exp {
						t.Errorf("\t%s\tTest %d:\tShould get the exact canonical form.", failed, testID)
						t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, string(data))
						t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.exp)
					} else {
						t.Logf("\t%s\tTest %d:\tShould get the exact canonical form.", success, testID)
					}
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_OrderIndependence(t *testing.T) {
	t.Log("Given the need to verify insertion order does not change the rendering.")
	{
		t.Logf("\tTest 0:\tWhen inserting the same entries in two different orders.")
		{
			first := make(map[string]any)
			first["transaction_id"] = "aa11"
			first["version"] = "1.0"
			first["data"] = map[string]any{"k2": 2.0, "k1": 1.0}

			second := make(map[string]any)
			second["data"] = map[string]any{"k1": 1.0, "k2": 2.0}
			second["version"] = "1.0"
			second["transaction_id"] = "aa11"

			data1, err := canonical.Marshal(first)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to marshal the first mapping: %v", failed, err)
			}
			data2, err := canonical.Marshal(second)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to marshal the second mapping: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to marshal both mappings.", success)

			if string(data1) != string(data2) {
				t.Errorf("\t%s\tTest 0:\tShould get identical canonical bytes.", failed)
				t.Logf("\t%s\tTest 0:\tgot: %s", failed, string(data1))
				t.Logf("\t%s\tTest 0:\texp: %s", failed, string(data2))
			} else {
				t.Logf("\t%s\tTest 0:\tShould get identical canonical bytes.", success)
			}

			// Marshalling the same mapping repeatedly must be stable as well.
			again, err := canonical.Marshal(first)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to marshal the mapping again: %v", failed, err)
			}
			if string(again) != string(data1) {
				t.Errorf("\t%s\tTest 0:\tShould get stable output across calls.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould get stable output across calls.", success)
			}
		}
	}
}

func Test_Unsupported(t *testing.T) {
	t.Log("Given the need to reject values outside the canonical domain.")
	{
		t.Logf("\tTest 0:\tWhen handling unsupported values.")
		{
			if _, err := canonical.Marshal(map[string]any{"ch": make(chan int)}); err == nil {
				t.Errorf("\t%s\tTest 0:\tShould reject a channel value.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould reject a channel value.", success)
			}

			if _, err := canonical.Marshal(map[string]any{"nan": math.NaN()}); err == nil {
				t.Errorf("\t%s\tTest 0:\tShould reject a NaN value.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould reject a NaN value.", success)
			}
		}
	}
}
