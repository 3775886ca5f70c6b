package database_test

import (
	"errors"
	"testing"

	"github.com/jole141/chainsim/foundation/blockchain/database"
	"github.com/jole141/chainsim/foundation/blockchain/digest"
	"github.com/jole141/chainsim/foundation/blockchain/genesis"
	"github.com/jole141/chainsim/foundation/blockchain/merkle"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	minerA = "0x02a1633cafcc01ebfb6d78e39f687a1f0995c62fc95f51ead10a02ee0be551b5dc"
	minerB = "0x03b2f7a4c1b2e3d4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9"
	now    = uint64(1_700_000_000_000)
)

// =============================================================================

func Test_TransactionHash(t *testing.T) {
	gen := genesis.Default()

	t.Log("Given the need to identify transactions by their content.")
	{
		tx1 := database.NewCoinbaseTx(gen, minerA, minerA)
		tx2 := database.NewCoinbaseTx(gen, minerA, minerA)
		tx3 := database.NewCoinbaseTx(gen, minerB, minerB)

		if tx1.Hash() != tx1.Hash() {
			t.Fatalf("\t%s\tShould get the same hash on repeated calls.", failed)
		}
		t.Logf("\t%s\tShould get the same hash on repeated calls.", success)

		if tx1.Hash() != tx2.Hash() || !tx1.Equals(tx2) {
			t.Fatalf("\t%s\tShould get the same hash for field-equal transactions.", failed)
		}
		t.Logf("\t%s\tShould get the same hash for field-equal transactions.", success)

		if tx1.Hash() == tx3.Hash() {
			t.Fatalf("\t%s\tShould get a different hash for a different recipient.", failed)
		}
		t.Logf("\t%s\tShould get a different hash for a different recipient.", success)

		tx4 := database.NewCoinbaseTx(gen, "lock\xff", minerA)
		tx5 := database.NewCoinbaseTx(gen, "lock\xfe", minerA)
		if tx4.Hash() == tx5.Hash() {
			t.Logf("\t%s\tgot: %s", failed, tx4.Hash())
			t.Fatalf("\t%s\tShould get a different hash for scripts that differ in one invalid UTF-8 byte.", failed)
		}
		t.Logf("\t%s\tShould get a different hash for scripts that differ in one invalid UTF-8 byte.", success)

		nilInputs := tx1.Clone()
		nilInputs.Inputs = nil
		if nilInputs.Hash() != tx1.Hash() {
			t.Fatalf("\t%s\tShould hash a nil and an empty input list the same.", failed)
		}
		t.Logf("\t%s\tShould hash a nil and an empty input list the same.", success)
	}
}

func Test_Coinbase(t *testing.T) {
	gen := genesis.Default()
	tx := database.NewCoinbaseTx(gen, "script", minerA)

	if !tx.IsCoinbase() {
		t.Fatalf("Should have the coinbase shape.")
	}

	if tx.Version != gen.TxVersion || tx.LockTime != 0 {
		t.Fatalf("Should use the protocol transaction version: %d", tx.Version)
	}

	out := tx.Outputs[0]
	if out.Value != gen.BlockSubsidy || out.ScriptPubKey != "script" || out.Recipient != minerA {
		t.Logf("got: %+v", out)
		t.Fatalf("Should pay the subsidy to the recipient.")
	}

	transfer := database.NewTransferTx(gen, []database.TxInput{{PrevTxHash: tx.Hash()}}, []database.TxOutput{{Value: 10, Recipient: minerB}})
	if transfer.IsCoinbase() {
		t.Fatalf("Should not treat a transfer as a coinbase.")
	}
}

func Test_MinedBlocksAreValid(t *testing.T) {
	gen := genesis.Default()

	t.Log("Given the need to validate freshly created blocks.")
	{
		genesisBlock, err := database.InitGenesisBlock(gen, minerA, now)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create the genesis block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to create the genesis block.", success)

		if !genesisBlock.Header.IsGenesis() || len(genesisBlock.Trans) != 1 {
			t.Fatalf("\t%s\tShould have no parent and only the coinbase.", failed)
		}
		t.Logf("\t%s\tShould have no parent and only the coinbase.", success)

		if genesisBlock.Header.MerkleRoot != genesisBlock.Coinbase.Hash() {
			t.Fatalf("\t%s\tShould use the coinbase hash as the merkle root.", failed)
		}
		t.Logf("\t%s\tShould use the coinbase hash as the merkle root.", success)

		if err := database.ValidateBlock(genesisBlock, now); err != nil {
			t.Fatalf("\t%s\tShould validate the genesis block: %v", failed, err)
		}
		t.Logf("\t%s\tShould validate the genesis block.", success)

		trans := []database.Tx{
			database.NewTransferTx(gen, []database.TxInput{{PrevTxHash: genesisBlock.Coinbase.Hash()}}, []database.TxOutput{{Value: 10, Recipient: minerB}}),
			database.NewTransferTx(gen, []database.TxInput{{PrevTxHash: genesisBlock.Coinbase.Hash(), PrevTxIndex: 1}}, []database.TxOutput{{Value: 20, Recipient: minerB}}),
		}

		block, err := database.MineNewBlock(database.MineArgs{
			Genesis:       gen,
			Miner:         minerB,
			PrevBlockHash: genesisBlock.Hash(),
			Trans:         trans,
			Now:           now + 1,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to mine a block.", success)

		if len(block.Trans) != 3 || !block.Trans[0].Equals(block.Coinbase) || block.Coinbase.Outputs[0].Recipient != minerB {
			t.Fatalf("\t%s\tShould place the coinbase paying the miner first.", failed)
		}
		t.Logf("\t%s\tShould place the coinbase paying the miner first.", success)

		if block.Header.Nonce != 0 || block.Header.Difficulty != gen.Difficulty || block.Header.SoftwareVersion != gen.SoftwareVersion {
			t.Fatalf("\t%s\tShould carry the protocol parameters in the header.", failed)
		}
		t.Logf("\t%s\tShould carry the protocol parameters in the header.", success)

		if err := database.ValidateBlock(block, now+1); err != nil {
			t.Fatalf("\t%s\tShould validate the mined block: %v", failed, err)
		}
		t.Logf("\t%s\tShould validate the mined block.", success)
	}
}

func Test_TamperDetection(t *testing.T) {
	gen := genesis.Default()

	block := mine(t, gen, minerA, digest.Hash([]byte("parent")), now)

	type table struct {
		name   string
		mutate func(b *database.Block)
		exp    error
	}

	tt := []table{
		{"merkle-root", func(b *database.Block) { b.Header.MerkleRoot = digest.Hash([]byte("bad")) }, database.ErrMerkleMismatch},
		{"transaction", func(b *database.Block) { b.Trans[0].Outputs[0].Value++ }, database.ErrMerkleMismatch},
		{"no-transactions", func(b *database.Block) { b.Trans = nil }, merkle.ErrEmptyInput},
		{"future", func(b *database.Block) { b.Header.TimeStamp = now + 1 }, database.ErrFutureBlock},
		{"coinbase", func(b *database.Block) { b.Coinbase.Outputs[0].Recipient = minerB }, database.ErrCoinbaseMismatch},
		{"extra-coinbase", func(b *database.Block) {
			b.Trans = append(b.Trans, database.NewCoinbaseTx(gen, minerB, minerB))
			b.Header.MerkleRoot, _ = merkle.RootOf(b.Trans)
		}, database.ErrCoinbaseMismatch},
	}

	t.Log("Given the need to detect tampered blocks.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				b := block.Clone()
				tst.mutate(&b)

				err := database.ValidateBlock(b, now)
				if !errors.Is(err, tst.exp) {
					t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
					t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.exp)
					t.Fatalf("\t%s\tTest %d:\tShould reject the block.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould reject the block.", success, testID)

				if err := database.ValidateBlock(block, now); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould not change the original block: %v", failed, testID, err)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_ByteExactHashing(t *testing.T) {
	gen := genesis.Default()

	t.Log("Given the need to tell apart values that differ in raw string bytes.")
	{
		genesisBlock, err := database.InitGenesisBlock(gen, minerA, now)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create the genesis block: %v", failed, err)
		}

		spend := func(script string) database.Tx {
			in := []database.TxInput{{PrevTxHash: genesisBlock.Coinbase.Hash(), ScriptSig: script}}
			return database.NewTransferTx(gen, in, []database.TxOutput{{Value: 10, Recipient: minerB}})
		}

		next, err := database.MineNewBlock(database.MineArgs{
			Genesis:       gen,
			Miner:         minerB,
			PrevBlockHash: genesisBlock.Hash(),
			Trans:         []database.Tx{spend("sig\xff")},
			Now:           now + 1,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}

		if err := database.ValidateChain([]database.Block{genesisBlock, next}, now+1); err != nil {
			t.Fatalf("\t%s\tShould validate the untouched chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould validate the untouched chain.", success)

		swapped := next.Clone()
		swapped.Trans[1] = spend("sig\xfe")

		err = database.ValidateChain([]database.Block{genesisBlock, swapped}, now+1)
		if !errors.Is(err, database.ErrMerkleMismatch) {
			t.Logf("\t%s\tgot: %v", failed, err)
			t.Logf("\t%s\texp: %v", failed, database.ErrMerkleMismatch)
			t.Fatalf("\t%s\tShould reject a transaction swapped for one differing in an invalid UTF-8 byte.", failed)
		}
		t.Logf("\t%s\tShould reject a transaction swapped for one differing in an invalid UTF-8 byte.", success)

		v1 := next.Clone()
		v1.Header.SoftwareVersion = "v\xff"
		v2 := next.Clone()
		v2.Header.SoftwareVersion = "v\xfe"
		if v1.Hash() == v2.Hash() {
			t.Fatalf("\t%s\tShould get a different block hash for versions that differ in one invalid UTF-8 byte.", failed)
		}
		t.Logf("\t%s\tShould get a different block hash for versions that differ in one invalid UTF-8 byte.", success)
	}
}

func Test_BlockData(t *testing.T) {
	gen := genesis.Default()
	block := mine(t, gen, minerA, digest.Hash([]byte("parent")), now)

	data := database.NewBlockData(block)
	if data.Hash != block.Hash() {
		t.Fatalf("Should carry the block hash.")
	}

	back, err := database.ToBlock(data)
	if err != nil {
		t.Fatalf("Should be able to convert the data back into a block: %s", err)
	}

	if back.Hash() != block.Hash() {
		t.Fatalf("Should get back the same block.")
	}

	type table struct {
		name   string
		mutate func(d *database.BlockData)
	}

	tt := []table{
		{"nonce", func(d *database.BlockData) { d.Header.Nonce = 42 }},
		{"difficulty", func(d *database.BlockData) { d.Header.Difficulty = 7 }},
		{"timestamp", func(d *database.BlockData) { d.Header.TimeStamp-- }},
		{"version", func(d *database.BlockData) { d.Header.SoftwareVersion = "9.9.9" }},
		{"merkle-root", func(d *database.BlockData) { d.Header.MerkleRoot = digest.Zero }},
		{"parent", func(d *database.BlockData) { d.Header.PrevBlockHash = nil }},
		{"hash", func(d *database.BlockData) { d.Hash = digest.Zero }},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			d := database.NewBlockData(block)
			tst.mutate(&d)

			if _, err := database.ToBlock(d); !errors.Is(err, database.ErrHashMismatch) {
				t.Logf("Test %s:\tgot: %v", tst.name, err)
				t.Fatalf("Test %s:\tShould detect the tampered header.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_ChainLinkage(t *testing.T) {
	gen := genesis.Default()

	t.Log("Given the need to validate the links of a chain.")
	{
		genesisBlock, err := database.InitGenesisBlock(gen, minerA, now)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create the genesis block: %v", failed, err)
		}

		if err := database.ValidateChain([]database.Block{genesisBlock}, now); err != nil {
			t.Fatalf("\t%s\tShould accept a chain holding only the genesis block: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept a chain holding only the genesis block.", success)

		if err := database.ValidateChain(nil, now); err != nil {
			t.Fatalf("\t%s\tShould accept an empty chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept an empty chain.", success)

		blocks := []database.Block{genesisBlock}
		for i := 1; i < 5; i++ {
			blocks = append(blocks, mine(t, gen, minerA, blocks[i-1].Hash(), now+uint64(i)))
		}

		if err := database.ValidateChain(blocks, now+5); err != nil {
			t.Fatalf("\t%s\tShould accept a chain of mined blocks: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept a chain of mined blocks.", success)

		rogue := mine(t, gen, minerB, genesisBlock.Hash(), now+5)
		withRogue := append(append([]database.Block{}, blocks...), rogue)
		if err := database.ValidateChain(withRogue, now+5); !errors.Is(err, database.ErrChainLinkage) {
			t.Fatalf("\t%s\tShould reject a block that doesn't extend the tip: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a block that doesn't extend the tip.", success)

		orphan := blocks[4].Clone()
		orphan.Header.PrevBlockHash = nil
		withOrphan := append(append([]database.Block{}, blocks[:4]...), orphan)
		if err := database.ValidateChain(withOrphan, now+5); !errors.Is(err, database.ErrChainLinkage) {
			t.Fatalf("\t%s\tShould reject a second block without a parent: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a second block without a parent.", success)

		bad := blocks[2].Clone()
		bad.Header.MerkleRoot = digest.Zero
		withBad := append(append([]database.Block{}, blocks[:2]...), bad)
		if err := database.ValidateChain(withBad, now+5); !errors.Is(err, database.ErrMerkleMismatch) {
			t.Fatalf("\t%s\tShould reject a chain holding an invalid block: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a chain holding an invalid block.", success)
	}
}

func Test_ChainExtend(t *testing.T) {
	gen := genesis.Default()

	t.Log("Given two replicas starting from the same genesis block.")
	{
		genesisBlock, err := database.InitGenesisBlock(gen, minerA, now)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create the genesis block: %v", failed, err)
		}

		chainA := database.NewChain(genesisBlock)
		chainB := database.NewChain(genesisBlock)

		build := func(tip *database.Block) (database.Block, error) {
			return database.MineNewBlock(database.MineArgs{
				Genesis:       gen,
				Miner:         minerA,
				PrevBlockHash: tip.Hash(),
				Now:           tip.Header.TimeStamp + 1,
			})
		}

		block2, err := chainA.Mine(build)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine block 2: %v", failed, err)
		}

		if err := chainB.Extend(block2, now+10); err != nil {
			t.Fatalf("\t%s\tShould accept block 2: %v", failed, err)
		}
		if chainB.Len() != 2 {
			t.Fatalf("\t%s\tShould have a chain of length 2, got %d.", failed, chainB.Len())
		}
		t.Logf("\t%s\tShould accept block 2.", success)

		block3, err := chainA.Mine(build)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine block 3: %v", failed, err)
		}

		rogue := mine(t, gen, minerB, genesisBlock.Hash(), now+3)

		if err := chainB.Extend(rogue, now+10); !errors.Is(err, database.ErrChainLinkage) {
			t.Fatalf("\t%s\tShould reject the rogue block: %v", failed, err)
		}
		if chainB.Len() != 2 {
			t.Fatalf("\t%s\tShould keep a chain of length 2, got %d.", failed, chainB.Len())
		}
		t.Logf("\t%s\tShould reject the rogue block.", success)

		if err := chainB.Extend(block3, now+10); err != nil {
			t.Fatalf("\t%s\tShould accept block 3: %v", failed, err)
		}

		tip, _ := chainB.LatestBlock()
		if tip.Hash() != block3.Hash() || chainB.Len() != 3 {
			t.Fatalf("\t%s\tShould have block 3 as the tip.", failed)
		}
		t.Logf("\t%s\tShould accept block 3.", success)
	}
}

func Test_ChainCopies(t *testing.T) {
	gen := genesis.Default()

	genesisBlock, err := database.InitGenesisBlock(gen, minerA, now)
	if err != nil {
		t.Fatalf("Should be able to create the genesis block: %s", err)
	}

	chain := database.NewChain()
	if _, ok := chain.LatestBlock(); ok {
		t.Fatalf("Should not have a tip for an empty chain.")
	}

	var sawNil bool
	_, err = chain.Mine(func(tip *database.Block) (database.Block, error) {
		sawNil = tip == nil
		return genesisBlock, nil
	})
	if err != nil || !sawNil {
		t.Fatalf("Should build the genesis block on an empty chain: %v", err)
	}

	blocks := chain.Blocks()
	blocks[0].Trans[0].Outputs[0].Value = 1

	tip, _ := chain.LatestBlock()
	if tip.Trans[0].Outputs[0].Value != gen.BlockSubsidy {
		t.Fatalf("Should not be able to change the chain through a copy.")
	}

	if _, err := chain.Mine(func(tip *database.Block) (database.Block, error) {
		return database.Block{}, errors.New("failed")
	}); err == nil || chain.Len() != 1 {
		t.Fatalf("Should not append a block when building fails.")
	}
}

func Test_BlockProof(t *testing.T) {
	gen := genesis.Default()

	trans := []database.Tx{
		database.NewTransferTx(gen, nil, []database.TxOutput{{Value: 1, Recipient: minerB}}),
		database.NewTransferTx(gen, nil, []database.TxOutput{{Value: 2, Recipient: minerB}}),
	}

	block, err := database.MineNewBlock(database.MineArgs{Genesis: gen, Miner: minerA, Trans: trans, Now: now})
	if err != nil {
		t.Fatalf("Should be able to mine a block: %s", err)
	}

	for _, tx := range block.Trans {
		proof, order, err := block.Proof(tx)
		if err != nil {
			t.Fatalf("Should be able to get a proof: %s", err)
		}

		if !merkle.VerifyProof(tx.Hash(), proof, order, block.Header.MerkleRoot) {
			t.Fatalf("Should be able to verify the proof for %s.", tx)
		}
	}
}

// =============================================================================

func mine(t *testing.T, gen genesis.Genesis, miner string, prev digest.Digest, ts uint64) database.Block {
	t.Helper()

	block, err := database.MineNewBlock(database.MineArgs{
		Genesis:       gen,
		Miner:         miner,
		PrevBlockHash: prev,
		Now:           ts,
	})
	if err != nil {
		t.Fatalf("Should be able to mine a block: %s", err)
	}

	return block
}
