package models

// LikeResult is the outcome of a like toggle. LikesCount assumes the write
// succeeded; the authoritative value is recomputed from the liker set on read.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}
