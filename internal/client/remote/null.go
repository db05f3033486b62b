package remote

import "context"

// NullClient is the backend used when no sync endpoint is configured.
// Auth always fails, SignedIn is always false, and data calls report
// ErrNotSignedIn so callers skip sync instead of crashing.
type NullClient struct{}

func NewNullClient() *NullClient { return &NullClient{} }

func (NullClient) Register(context.Context, string, string) error { return ErrUnavailable }
func (NullClient) Login(context.Context, string, string) error    { return ErrUnavailable }
func (NullClient) Logout()                                        {}
func (NullClient) SignedIn() bool                                 { return false }
func (NullClient) Ping(context.Context) error                     { return ErrUnavailable }

func (NullClient) ListDocuments(context.Context) ([]*Document, error) {
	return nil, ErrNotSignedIn
}

func (NullClient) CreateDocument(context.Context, *Document) (*Document, error) {
	return nil, ErrNotSignedIn
}

func (NullClient) UpdateProgress(context.Context, string, int, string) error {
	return ErrNotSignedIn
}

func (NullClient) SetFingerprint(context.Context, string, string) error {
	return ErrNotSignedIn
}

func (NullClient) DeleteDocument(context.Context, string) error {
	return ErrNotSignedIn
}

func (NullClient) GetStats(context.Context) (*Stats, error) {
	return nil, ErrNotSignedIn
}

func (NullClient) SaveStats(context.Context, *Stats) error {
	return ErrNotSignedIn
}

func (NullClient) SaveSession(context.Context, *Session) error {
	return ErrNotSignedIn
}
