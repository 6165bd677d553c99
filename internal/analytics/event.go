// Package analytics emits pageview events to the analytics backend. The
// backend imposes a hard cap on event properties, so the cap is enforced
// here at construction instead of trusting backend truncation behavior.
package analytics

import (
	"sort"
	"time"
)

// EventName is the only event this portal emits.
const EventName = "pageview"

// MaxProperties is the analytics backend's documented property limit per
// event. Extra properties are dropped deterministically, never failing the
// request.
const MaxProperties = 2

// PageView is one trackable page view. Properties never exceed
// MaxProperties entries.
type PageView struct {
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"`
	Time       time.Time         `json:"time"`

	// DroppedProperties counts entries removed by the cap. Not serialized;
	// surfaced through metrics only.
	DroppedProperties int `json:"-"`
}

// NewPageView builds a capped pageview event. When properties exceed
// MaxProperties, the kept entries are chosen by sorted key so the outcome
// is deterministic.
func NewPageView(properties map[string]string) PageView {
	view := PageView{
		Name: EventName,
		Time: time.Now(),
	}

	if len(properties) <= MaxProperties {
		if len(properties) > 0 {
			view.Properties = make(map[string]string, len(properties))
			for k, v := range properties {
				view.Properties[k] = v
			}
		}
		return view
	}

	keys := make([]string, 0, len(properties))
	for k := range properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	view.Properties = make(map[string]string, MaxProperties)
	for _, k := range keys[:MaxProperties] {
		view.Properties[k] = properties[k]
	}
	view.DroppedProperties = len(properties) - MaxProperties
	return view
}
