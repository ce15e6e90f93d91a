package tools

import (
	"fmt"
	"strconv"
	"time"

	"github.com/baalimago/qwery/internal/models"
)

type DateTool models.Specification

var Date = DateTool{
	Name:        "date",
	Description: "Get the current date and time. Reads the clock on every call.",
	Inputs: &models.InputSchema{
		Type:     "object",
		Required: make([]string, 0),
		Properties: map[string]models.ParameterObject{
			"format": {
				Type:        "string",
				Description: "Optional Go layout string, example: '2006-01-02 15:04:05'. If omitted, RFC3339 is used.",
			},
			"utc": {
				Type:        "boolean",
				Description: "If true, returns time in UTC.",
			},
			"unix": {
				Type:        "boolean",
				Description: "If true, returns the current Unix timestamp in seconds. Overrides 'format' if set.",
			},
		},
	},
}

// now is swapped out in tests. The tool itself must read the real clock
// on every call, results are inherently non-cacheable.
var now = time.Now

func (d DateTool) Call(input models.Input) (string, error) {
	t := now()
	if v, ok := input["utc"].(bool); ok && v {
		t = t.UTC()
	}
	if v, ok := input["unix"].(bool); ok && v {
		return strconv.FormatInt(t.Unix(), 10), nil
	}
	layout := time.RFC3339
	if format, ok := input["format"].(string); ok && format != "" {
		layout = format
	}
	return t.Format(layout), nil
}

func (d DateTool) Specification() models.Specification {
	return models.Specification(Date)
}

type RandomTool models.Specification

var Random = RandomTool{
	Name:        "random",
	Description: "Generate a random integer in the inclusive range [min, max]. Draws fresh randomness on every call.",
	Inputs: &models.InputSchema{
		Type:     "object",
		Required: []string{"min", "max"},
		Properties: map[string]models.ParameterObject{
			"min": {
				Type:        "number",
				Description: "Lower bound, inclusive.",
			},
			"max": {
				Type:        "number",
				Description: "Upper bound, inclusive.",
			},
		},
	},
}

// intN is swapped out in tests
var intN = randIntN

func (r RandomTool) Call(input models.Input) (string, error) {
	minV, ok := input["min"].(float64)
	if !ok {
		return "", fmt.Errorf("min must be a number")
	}
	maxV, ok := input["max"].(float64)
	if !ok {
		return "", fmt.Errorf("max must be a number")
	}
	lo, hi := int64(minV), int64(maxV)
	if lo > hi {
		return "", fmt.Errorf("min (%v) must not exceed max (%v)", lo, hi)
	}
	return strconv.FormatInt(lo+intN(hi-lo+1), 10), nil
}

func (r RandomTool) Specification() models.Specification {
	return models.Specification(Random)
}
