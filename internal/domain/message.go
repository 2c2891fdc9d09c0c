package domain

// SourceMessage is one candidate alert email fetched from the mailbox.
// Body is the decoded text/plain content when a full fetch was requested;
// Snippet is always present and is the default extraction input.
type SourceMessage struct {
	ID           string // provider message id, stable dedup key
	ThreadID     string
	From         string
	To           string
	Subject      string
	Date         string // raw Date header as the provider reports it
	Snippet      string
	Body         string
	InternalDate int64 // provider-side receipt time, epoch millis
}
