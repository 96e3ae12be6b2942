package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, map[string]string{"code": "shirt"}))
	assert.Equal(t, "{\n\t\"code\": \"shirt\"\n}\n", buf.String())

	assert.Error(t, WriteJSON(&buf, make(chan int)))
}
