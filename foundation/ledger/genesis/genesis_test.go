package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quarrychain/quarry/foundation/ledger/genesis"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// =============================================================================

const document = `{
	"date": "2026-01-01T00:00:00Z",
	"name": "quarry-test",
	"current_version": "1.0",
	"versions": {
		"1.0": {"difficulty": 5},
		"0.9": {"difficulty": 2}
	},
	"balances": {
		"addr1": 1000,
		"addr2": 25.5
	}
}`

func Test_Load(t *testing.T) {
	t.Log("Given the need to load a genesis file.")
	{
		t.Logf("\tTest 0:\tWhen loading a well formed file.")
		{
			path := filepath.Join(t.TempDir(), "genesis.json")
			if err := os.WriteFile(path, []byte(document), 0644); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to write the fixture: %v", failed, err)
			}

			gen, err := genesis.Load(path)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the genesis file: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to load the genesis file.", success)

			if gen.CurrentVersion != "1.0" {
				t.Errorf("\t%s\tTest 0:\tShould get the current version. got[%s]", failed, gen.CurrentVersion)
			} else {
				t.Logf("\t%s\tTest 0:\tShould get the current version.", success)
			}

			if gen.Balances["addr2"] != 25.5 {
				t.Errorf("\t%s\tTest 0:\tShould get the fractional balance. got[%v]", failed, gen.Balances["addr2"])
			} else {
				t.Logf("\t%s\tTest 0:\tShould get the fractional balance.", success)
			}

			d, err := gen.Difficulty("1.0")
			if err != nil || d != 5 {
				t.Errorf("\t%s\tTest 0:\tShould resolve the difficulty for version 1.0. got[%d] err[%v]", failed, d, err)
			} else {
				t.Logf("\t%s\tTest 0:\tShould resolve the difficulty for version 1.0.", success)
			}

			if _, err := gen.Difficulty("9.9"); err == nil {
				t.Errorf("\t%s\tTest 0:\tShould reject an unknown version.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould reject an unknown version.", success)
			}
		}

		t.Logf("\tTest 1:\tWhen loading a file whose current version is missing.")
		{
			path := filepath.Join(t.TempDir(), "genesis.json")
			doc := `{"current_version": "2.0", "versions": {"1.0": {"difficulty": 1}}}`
			if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to write the fixture: %v", failed, err)
			}

			if _, err := genesis.Load(path); err == nil {
				t.Errorf("\t%s\tTest 1:\tShould reject the genesis file.", failed)
			} else {
				t.Logf("\t%s\tTest 1:\tShould reject the genesis file.", success)
			}
		}

		t.Logf("\tTest 2:\tWhen loading a missing file.")
		{
			if _, err := genesis.Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
				t.Errorf("\t%s\tTest 2:\tShould reject a missing file.", failed)
			} else {
				t.Logf("\t%s\tTest 2:\tShould reject a missing file.", success)
			}
		}
	}
}
