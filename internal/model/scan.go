package model

import "time"

// Shape names the payload form the normalizer recognized.
type Shape string

const (
	ShapeEmpty Shape = "empty" // blank payload
	ShapeJSON  Shape = "json"  // brace- or bracket-delimited text
	ShapeURL   Shape = "url"   // absolute http(s) URL
	ShapeQuery Shape = "query" // a=1&b=2
	ShapePairs Shape = "pairs" // a:1, b=2
	ShapeText  Shape = "text"  // anything else
)

// Scan is one processed payload: the trimmed raw text, its canonical value
// and its CSV rendering.
type Scan struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Shape     Shape     `json:"shape"`
	Raw       string    `json:"raw"`
	Data      any       `json:"data"`
	CSV       string    `json:"csv"`
}
