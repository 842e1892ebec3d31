package drafts

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	_, _, m := aliceFixture()
	review, err := m.Review(context.Background(), "tenant", 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, review))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteReportWithoutDraft(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteReport(&buf, &Review{}), ErrMissingDraft)
	assert.Zero(t, buf.Len())
}

func TestReportValue(t *testing.T) {
	assert.Equal(t, "-", reportValue(nil))
	assert.Equal(t, "222", reportValue("222"))
	long := bytes.Repeat([]byte("x"), 200)
	assert.Len(t, reportValue(string(long)), reportValueWidth)
}
