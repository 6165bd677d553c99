package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageView_UnderCap(t *testing.T) {
	view := NewPageView(map[string]string{"path": "/index.html"})

	assert.Equal(t, EventName, view.Name)
	assert.Equal(t, map[string]string{"path": "/index.html"}, view.Properties)
	assert.Zero(t, view.DroppedProperties)
	assert.False(t, view.Time.IsZero())
}

func TestNewPageView_AtCap(t *testing.T) {
	view := NewPageView(map[string]string{
		"path":   "/index.html",
		"origin": "https://my-site.wal.app/index.html",
	})

	assert.Len(t, view.Properties, MaxProperties)
	assert.Zero(t, view.DroppedProperties)
}

func TestNewPageView_TruncatesDeterministically(t *testing.T) {
	props := map[string]string{
		"path":    "/index.html",
		"origin":  "https://my-site.wal.app/index.html",
		"browser": "firefox",
	}

	view := NewPageView(props)
	assert.Len(t, view.Properties, MaxProperties)
	assert.Equal(t, 1, view.DroppedProperties)

	// Kept keys are the first MaxProperties in sorted order.
	assert.Contains(t, view.Properties, "browser")
	assert.Contains(t, view.Properties, "origin")
	assert.NotContains(t, view.Properties, "path")

	// Same input, same outcome.
	again := NewPageView(props)
	assert.Equal(t, view.Properties, again.Properties)
}

func TestNewPageView_NoProperties(t *testing.T) {
	view := NewPageView(nil)
	assert.Nil(t, view.Properties)
}

func TestNewPageView_CopiesInput(t *testing.T) {
	props := map[string]string{"path": "/a.html"}
	view := NewPageView(props)

	props["path"] = "/mutated.html"
	assert.Equal(t, "/a.html", view.Properties["path"])
}
