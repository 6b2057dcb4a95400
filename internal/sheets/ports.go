package sheets

import (
	"context"

	"lifeos/internal/core"
)

// EntryWriter appends logged entries to an external spreadsheet.
type EntryWriter interface {
	AppendEntry(ctx context.Context, e core.DomainEntry) (rowRef string, err error)
}
