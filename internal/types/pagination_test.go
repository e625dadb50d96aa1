package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPage_TotalPagesRoundsUp(t *testing.T) {
	req := PageRequest{PageNumber: 0, Size: 10}

	page := NewPage([]int{1, 2, 3}, req, 21)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, int64(21), page.TotalElements)

	page = NewPage([]int{}, req, 20)
	assert.Equal(t, 2, page.TotalPages)
}

func TestNewPage_NilContentSerializesAsEmptyArray(t *testing.T) {
	page := NewPage[int](nil, PageRequest{Size: 10}, 0)

	raw, err := json.Marshal(page)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"content":[]`)
	assert.Equal(t, 0, page.TotalPages)
}

func TestPageRequest_Offset(t *testing.T) {
	assert.Equal(t, 0, PageRequest{PageNumber: 0, Size: 10}.Offset())
	assert.Equal(t, 30, PageRequest{PageNumber: 3, Size: 10}.Offset())
}
