package storage

// ApiStore defines the read-only operations needed by the HTTP API outside of the transfer flow.
type ApiStore interface {
	AccountReader
	LedgerReader
}
