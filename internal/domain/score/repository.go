package score

import "context"

// Repository describes score ledger persistence needs from use cases.
// RecentEntries treats an empty identity as "all identities".
type Repository interface {
	Append(ctx context.Context, entry Entry) (Entry, error)
	RecentEntries(ctx context.Context, identity string, limit int) ([]Entry, error)
	PurgeByIdentity(ctx context.Context, identity string) (int64, error)
}
