package console_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jole141/chainsim/app/services/simulator/console"
)

func Test_Report(t *testing.T) {
	type table struct {
		name    string
		event   string
		printed bool
		exp     string
	}

	tt := []table{
		{"mined", "viewer: mined: node[0]: height[1]", true, "mined: node[0]: height[1]\n"},
		{"accepted", "viewer: accepted: node[1]: height[1]", true, "accepted: node[1]: height[1]\n"},
		{"rejected", "viewer: rejected: node[2]: block[0x01]: block timestamp is in the future", true, "rejected: node[2]: block[0x01]: block timestamp is in the future\n"},
		{"ignored", "worker: runMiningOperation: MINING: started", false, ""},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			var buf bytes.Buffer
			r := console.New(&buf, false)

			if got := r.Report(tst.event); got != tst.printed {
				t.Logf("Test %s:\tgot: %v", tst.name, got)
				t.Logf("Test %s:\texp: %v", tst.name, tst.printed)
				t.Fatalf("Test %s:\tShould report only block events.", tst.name)
			}

			if buf.String() != tst.exp {
				t.Logf("Test %s:\tgot: %q", tst.name, buf.String())
				t.Logf("Test %s:\texp: %q", tst.name, tst.exp)
				t.Fatalf("Test %s:\tShould print the event.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_Colored(t *testing.T) {
	var buf bytes.Buffer
	r := console.New(&buf, true)

	r.Report("viewer: rejected: node[2]")
	r.Banner("starting %d nodes", 10)

	out := buf.String()
	if !strings.Contains(out, "\x1b[") {
		t.Fatalf("Should write color codes: %q", out)
	}

	if !strings.Contains(out, "rejected: node[2]") || !strings.Contains(out, "starting 10 nodes") {
		t.Fatalf("Should write the messages: %q", out)
	}
}
