package domain

import "context"

// RawArchiver is the optional debug side-channel for raw inbound feed
// batches (SPEC_FULL.md §11). Off by default; wired only when archiving is
// enabled in the config. It never backs analytics state itself.
type RawArchiver interface {
	Append(ctx context.Context, gameID string, payload []byte) error
}
