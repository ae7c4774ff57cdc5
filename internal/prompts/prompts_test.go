package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKnownKeys(t *testing.T) {
	tests := map[string]DocumentType{
		"note":            DocumentNote,
		"personal-note":   DocumentNote,
		"confcall":        DocumentConfCall,
		"conference-call": DocumentConfCall,
		"ONEONE":          DocumentOneToOne,
		"meeting":         DocumentMeeting,
		" lecture ":       DocumentLecture,
		"interview":       DocumentInterview,
		"default":         DocumentDefault,
	}
	for key, want := range tests {
		got, ok := Parse(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
}

func TestResolveUnknownFallsBackToDefault(t *testing.T) {
	for _, key := range []string{"", "brainstorm", "podcast"} {
		_, ok := Parse(key)
		assert.False(t, ok, key)
		assert.Equal(t, DocumentDefault, Resolve(key), key)
	}
}

func TestEveryTypeHasDistinctInstruction(t *testing.T) {
	all := []DocumentType{
		DocumentDefault,
		DocumentNote,
		DocumentConfCall,
		DocumentOneToOne,
		DocumentMeeting,
		DocumentLecture,
		DocumentInterview,
	}
	seen := make(map[string]DocumentType)
	for _, dt := range all {
		ins := dt.Instruction()
		assert.NotEmpty(t, ins, dt.String())
		if prev, dup := seen[ins]; dup {
			t.Fatalf("%s and %s share an instruction", prev, dt)
		}
		seen[ins] = dt

		back, ok := Parse(dt.String())
		assert.True(t, ok)
		assert.Equal(t, dt, back, "canonical key round-trips")
	}
	assert.Len(t, seen, 7)
}
