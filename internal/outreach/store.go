package outreach

// Store is the persistence boundary the engine operates against. Load
// methods return the full record set; Save methods overwrite it atomically.
// Malformed data is a load error: the engine fails fast rather than
// operating on partial state.
type Store interface {
	LoadContacts() ([]Contact, error)
	SaveContacts([]Contact) error

	LoadTargets() ([]Target, error)
	SaveTargets([]Target) error

	LoadPending() ([]Pending, error)
	SavePending([]Pending) error

	LoadLog() ([]LogEntry, error)
	AppendLog(entries ...LogEntry) error

	LoadOptOuts() ([]OptOutEntry, error)
	SaveOptOuts([]OptOutEntry) error

	Close() error
}
