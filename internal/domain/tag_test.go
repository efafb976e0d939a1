package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mirrorlog/mirrorlog-server/internal/errors"
)

func TestTag_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tag     Tag
		wantErr bool
	}{
		{"valid default", Tag{Name: "note", IsDefault: true}, false},
		{"valid custom", Tag{Name: "done", PageID: "page-001"}, false},
		{"default with page", Tag{Name: "note", IsDefault: true, PageID: "page-001"}, true},
		{"custom without page", Tag{Name: "done"}, true},
		{"missing name", Tag{IsDefault: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tag.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTag_UsableOn(t *testing.T) {
	def := Tag{Name: "note", IsDefault: true}
	custom := Tag{Name: "done", PageID: "page-001"}

	assert.True(t, def.UsableOn("page-001"))
	assert.True(t, def.UsableOn("page-002"))
	assert.True(t, custom.UsableOn("page-001"))
	assert.False(t, custom.UsableOn("page-002"))
}
