package domain

import (
	"strconv"
	"time"
)

// Document is the canonical record of one ingested message.
// Documents are never hard-deleted; source deletions set Deleted.
type Document struct {
	// ID is stable across re-ingestion. See DocumentID.
	ID string

	// CollectionID is the partition (e.g. a channel) the document belongs to.
	CollectionID string

	// Timestamp is the source send time. Monotonic within a collection.
	Timestamp string

	// ThreadTimestamp links a reply to the message that started its thread.
	// Preserved for display only.
	ThreadTimestamp string

	// AuthorID identifies the sender, when known.
	AuthorID string

	// Text is the whitespace-trimmed body. This is the indexed field.
	Text string

	// CitationURI is a stable external link to the message.
	CitationURI string

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last written.
	UpdatedAt time.Time

	// Deleted marks the document as a tombstone, excluded from search.
	Deleted bool
}

// DocumentID builds the identifier for a message in a collection.
func DocumentID(collectionID, timestamp string) string {
	return collectionID + "-" + timestamp
}

// Validate checks the fields required to index a document.
func (d *Document) Validate() error {
	switch {
	case d.ID == "":
		return invalid("document id is required")
	case d.CollectionID == "":
		return invalid("document collection is required")
	case d.Timestamp == "":
		return invalid("document timestamp is required")
	}
	return nil
}

// TimestampValue returns the numeric value of a source timestamp.
// Non-numeric timestamps sort as zero.
func TimestampValue(ts string) float64 {
	v, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return 0
	}
	return v
}

// RawMessage is a record as delivered by an ingestion source.
type RawMessage struct {
	// SourceID is the message identifier in the source system.
	SourceID string

	// Text is the raw body text.
	Text string

	// Timestamp is the source send time.
	Timestamp string

	// ThreadTimestamp is the timestamp of the thread parent, if any.
	ThreadTimestamp string

	// AuthorID identifies the sender, if known.
	AuthorID string

	// Link is a stable permalink to the message.
	Link string

	// Deleted is true when the source reports the message was removed.
	Deleted bool
}

// MessagePage is one page of a paginated source fetch.
type MessagePage struct {
	// Messages are the records on this page.
	Messages []RawMessage

	// NextCursor resumes the fetch. Empty when no pages remain.
	NextCursor string
}
