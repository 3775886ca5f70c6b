package mempool_test

import (
	"testing"

	"github.com/jole141/chainsim/foundation/blockchain/database"
	"github.com/jole141/chainsim/foundation/blockchain/genesis"
	"github.com/jole141/chainsim/foundation/blockchain/mempool"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func transfer(value uint64, to string) database.Tx {
	return database.NewTransferTx(genesis.Default(), nil, []database.TxOutput{{Value: value, Recipient: to}})
}

func TestCRUD(t *testing.T) {
	type table struct {
		name string
		txs  []database.Tx
		best int
	}

	tt := []table{
		{
			name: "basic",
			txs: []database.Tx{
				transfer(10, "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"),
				transfer(50, "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"),
				transfer(100, "0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76"),
				transfer(10, "0x6Fe6CF3c8fF57c58d24BfC869668F48BCbDb3BD9"),
			},
			best: 2,
		},
	}

	t.Log("Given the need to validate mempool api.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of transaction.", testID)
			{
				f := func(t *testing.T) {
					mp := mempool.New()

					for _, tx := range tst.txs {
						mp.Upsert(tx)
						t.Logf("\t%s\tTest %d:\tShould be able to add new transaction: %s", success, testID, tx)
					}

					if mp.Upsert(tst.txs[0]) != len(tst.txs) {
						t.Fatalf("\t%s\tTest %d:\tShould not add a duplicate transaction.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould not add a duplicate transaction.", success, testID)

					for i, tx := range mp.Copy() {
						if !tx.Equals(tst.txs[i]) {
							t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, tx)
							t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.txs[i])
							t.Fatalf("\t%s\tTest %d:\tShould get back the transactions in arrival order.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back the transactions in arrival order.", success, testID)

					best := mp.PickBest(tst.best)
					if len(best) != tst.best || !best[0].Equals(tst.txs[0]) || !best[1].Equals(tst.txs[1]) {
						t.Fatalf("\t%s\tTest %d:\tShould pick the oldest transactions.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould pick the oldest transactions.", success, testID)

					if len(mp.PickBest(len(tst.txs)+10)) != len(tst.txs) {
						t.Fatalf("\t%s\tTest %d:\tShould cap the pick at the pool size.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould cap the pick at the pool size.", success, testID)

					mp.Delete(best...)
					if mp.Count() != len(tst.txs)-tst.best {
						t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, mp.Count())
						t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, len(tst.txs)-tst.best)
						t.Fatalf("\t%s\tTest %d:\tShould be able to delete transactions.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to delete transactions.", success, testID)

					if next := mp.PickBest(1); len(next) != 1 || !next[0].Equals(tst.txs[tst.best]) {
						t.Fatalf("\t%s\tTest %d:\tShould keep the order after a delete.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould keep the order after a delete.", success, testID)

					mp.Truncate()
					if mp.Count() != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould be able to truncate the pool.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to truncate the pool.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}
