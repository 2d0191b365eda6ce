package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brain2-conceptmap/pkg/api"
)

func TestValidate_EventRequest(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name   string
		req    api.EventRequest
		fields []string
	}{
		{name: "wheel needs no ids", req: api.EventRequest{Type: api.EventWheel, DeltaY: -3}},
		{name: "select with key", req: api.EventRequest{Type: api.EventSelect, NoteID: "n1", Label: "Cell"}},
		{name: "missing type", req: api.EventRequest{}, fields: []string{"type"}},
		{name: "unknown type", req: api.EventRequest{Type: "teleport"}, fields: []string{"type"}},
		{name: "select without key", req: api.EventRequest{Type: api.EventSelect}, fields: []string{"note_id", "label"}},
		{name: "expand without note", req: api.EventRequest{Type: api.EventExpand}, fields: []string{"note_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			var got []string
			for _, e := range verrs.Errors {
				got = append(got, e.Field)
				assert.NotEmpty(t, e.Message)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func TestValidate_NestedNotes(t *testing.T) {
	err := GetValidator().Validate(api.ReplaceNotesRequest{Notes: []api.NoteRequest{
		{ID: "ok", Concepts: []string{"A"}},
		{ID: "", Concepts: []string{""}},
	}})

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	var fields []string
	for _, e := range verrs.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"notes[1].id", "notes[1].concepts[0]"}, fields)
	assert.Contains(t, err.Error(), "notes[1].id: This field is required")
}
