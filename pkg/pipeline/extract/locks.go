package extract

import "sync"

// documentLocks is the process-wide, monotonically growing per-document
// mutex registry of §4.5/§9: entries are created lazily on first access and
// never removed, bounding memory to the working set of documents seen
// in-flight during the process lifetime.
type documentLocks struct {
	entries sync.Map // document id -> *sync.Mutex
}

func newDocumentLocks() *documentLocks {
	return &documentLocks{}
}

func (l *documentLocks) lockFor(documentID string) *sync.Mutex {
	actual, _ := l.entries.LoadOrStore(documentID, &sync.Mutex{})
	return actual.(*sync.Mutex)
}
