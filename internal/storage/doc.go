// Package storage persists the outreach record sets.
//
// Every store is read fully into memory at process start and written back in
// full at defined checkpoints (end of a discovery pass, end of a dispatch
// session, after every opt-out mutation). The engine assumes a single
// operator/process at a time; there is no fine-grained locking.
package storage
