package contracts

// IWordSegmenter splits an identifier spelling into ordered lowercase words.
type IWordSegmenter interface {
	Segment(identifier string) ([]string, error)
}
