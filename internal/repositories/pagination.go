package repositories

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// DefaultPageLimit applies when a page does not name a limit.
	DefaultPageLimit = 20
	// MaxPageLimit caps the number of items in one page.
	MaxPageLimit = 100
)

// Page selects a slice of a newest-first listing. Cursor is the opaque
// NextCursor of the previous page, empty for the first page.
type Page struct {
	Limit  int
	Cursor string
}

func (p Page) size() int {
	switch {
	case p.Limit <= 0:
		return DefaultPageLimit
	case p.Limit > MaxPageLimit:
		return MaxPageLimit
	default:
		return p.Limit
	}
}

// cursor is the (createdAt, _id) position of the last item of a page.
type cursor struct {
	CreatedAt time.Time
	ID        string
}

// EncodeCursor builds the opaque token for the item at (createdAt, id).
func EncodeCursor(createdAt time.Time, id string) string {
	raw := strconv.FormatInt(createdAt.UnixMilli(), 10) + ":" + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(token string) (cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return cursor{}, newValidationError("cursor")
	}
	millis, id, ok := strings.Cut(string(raw), ":")
	if !ok || id == "" {
		return cursor{}, newValidationError("cursor")
	}
	ms, err := strconv.ParseInt(millis, 10, 64)
	if err != nil {
		return cursor{}, newValidationError("cursor")
	}
	return cursor{CreatedAt: time.UnixMilli(ms).UTC(), ID: id}, nil
}

// after matches documents strictly older than the cursor position.
func (c cursor) after() bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"createdAt": bson.M{"$lt": c.CreatedAt}},
		bson.M{"createdAt": c.CreatedAt, "_id": bson.M{"$lt": c.ID}},
	}}
}

// pageStages returns the match/sort/limit prefix of a paged pipeline. It
// fetches one extra row so the caller can tell whether another page exists.
func pageStages(match bson.M, page Page) (mongo.Pipeline, error) {
	if page.Cursor != "" {
		c, err := decodeCursor(page.Cursor)
		if err != nil {
			return nil, err
		}
		if len(match) == 0 {
			match = c.after()
		} else {
			match = bson.M{"$and": bson.A{match, c.after()}}
		}
	}
	if match == nil {
		match = bson.M{}
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$limit", Value: page.size() + 1}},
	}, nil
}

// undatedLast gives documents without createdAt the oldest possible
// position so they page like any other row. Legacy users lack the field.
func undatedLast(pipeline mongo.Pipeline) mongo.Pipeline {
	fill := bson.D{{Key: "$addFields", Value: bson.M{
		"createdAt": bson.M{"$ifNull": bson.A{"$createdAt", time.Time{}}},
	}}}
	return append(mongo.Pipeline{fill}, pipeline...)
}

// trimPage cuts the look-ahead row and returns the cursor for the next page.
func trimPage[T any](items []T, page Page, position func(T) (time.Time, string)) ([]T, string) {
	limit := page.size()
	if len(items) <= limit {
		return items, ""
	}
	items = items[:limit]
	createdAt, id := position(items[limit-1])
	return items, EncodeCursor(createdAt, id)
}
