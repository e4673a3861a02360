package parsing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPDFParser_RejectsInvalidData(t *testing.T) {
	parser, err := NewPDFParser(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = parser.Close() })

	_, err = parser.Parse(context.Background(), []byte("not a pdf"))
	require.Error(t, err)
}

func TestPDFParser_CancelledContext(t *testing.T) {
	parser, err := NewPDFParser(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = parser.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = parser.Parse(ctx, []byte("%PDF-1.4"))
	require.ErrorIs(t, err, context.Canceled)
}
