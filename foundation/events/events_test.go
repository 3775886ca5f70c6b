package events_test

import (
	"testing"

	"github.com/jole141/chainsim/foundation/events"
)

func Test_Events(t *testing.T) {
	evts := events.New()

	id1, ch1 := evts.Acquire()
	id2, ch2 := evts.Acquire()

	if id1 == id2 {
		t.Fatalf("Should get a unique id for every receiver.")
	}

	evts.Send("viewer: mined")

	for _, ch := range []<-chan string{ch1, ch2} {
		if got := <-ch; got != "viewer: mined" {
			t.Logf("got: %s", got)
			t.Logf("exp: %s", "viewer: mined")
			t.Fatalf("Should deliver the message to every receiver.")
		}
	}

	if err := evts.Release(id1); err != nil {
		t.Fatalf("Should be able to release a receiver: %s", err)
	}

	if _, ok := <-ch1; ok {
		t.Fatalf("Should close the channel of a released receiver.")
	}

	if err := evts.Release(id1); err == nil {
		t.Fatalf("Should not release a receiver twice.")
	}

	for range 200 {
		evts.Send("flood")
	}

	if got := len(ch2); got != 100 {
		t.Logf("got: %d", got)
		t.Logf("exp: %d", 100)
		t.Fatalf("Should drop messages for a receiver that falls behind.")
	}

	evts.Shutdown()
	if evts.Count() != 0 {
		t.Fatalf("Should remove every receiver on shutdown.")
	}
}
