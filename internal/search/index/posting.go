package index

// Posting links a term to a document field with the term's frequency in
// that field. One posting exists per (term, document, field).
type Posting struct {
	DocID     string
	Field     string
	Frequency int
}

// PostingList is a slice of postings, ordered by DocID then Field so that
// identical index states always enumerate identically.
type PostingList []Posting
