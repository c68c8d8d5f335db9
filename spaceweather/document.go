package spaceweather

// Document pairs a typed event with the provider's raw canonical payload. The
// remote-fetch collaborator produces Documents; the cache layer persists the
// raw bytes verbatim and serves the typed event back on reads.
type Document struct {
	Event Event
	Raw   []byte
}

// NewDocument encodes the event into its canonical payload form. Handy for
// fixtures and for callers that construct events programmatically instead of
// fetching them.
func NewDocument(e Event) (Document, error) {
	raw, err := Encode(e)
	if err != nil {
		return Document{}, err
	}
	return Document{Event: e, Raw: raw}, nil
}
