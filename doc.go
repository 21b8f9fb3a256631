/*
Bluedag maintains the blue set of a PHANTOM BlockDAG: blocks named by
strings are inserted with their parents, the tips are kept up to date, and
every block is classified blue or red so that no blue block has more than k
blue blocks in its anticone.

The engine lives in domain/blockdag. cmd/bluedag replays a built-in or JSON
scenario through it and logs the resulting classification.

Usage:

	bluedag --scenario fig3 [--k=3] [--verify] [--choose-parents 4]
	bluedag --scenario-file my-dag.json --devnet --derive-k

For an up-to-date help message:

	bluedag --help
*/
package bluedag
