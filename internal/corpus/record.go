// Package corpus prepares raw text into fixed-length prompt records and
// serves them to the training loop in stable batches.
package corpus

// Record is one prepared corpus item: the original text, the truncated
// prompt token ids, and the decoded form of those ids. Records are
// created once during preparation and never mutated afterwards.
type Record struct {
	ID       string `json:"id"`
	RawText  string `json:"raw_text"`
	TokenIDs []int  `json:"token_ids"`
	Query    string `json:"query"`
}

// RawItem is an unprepared corpus document.
type RawItem struct {
	Text string `json:"text"`
}
