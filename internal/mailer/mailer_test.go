package mailer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIncludesHeadersBodyAndAttachment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "order.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.3 test"), 0o600))

	m := Build(Config{User: "po@example.com", FromName: "Inventory"}, Message{
		To:          "vendor@example.com",
		Subject:     "Purchase order PO-202610-0001",
		Text:        "Please find the order attached.",
		HTML:        "<p>Please find the order attached.</p>",
		Attachments: []Attachment{{Path: path, Name: "PO-202610-0001.pdf"}},
	})

	assert.Equal(t, []string{"vendor@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Purchase order PO-202610-0001"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, `filename="PO-202610-0001.pdf"`)
	assert.Contains(t, raw, "po@example.com")
}

func TestSendHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSMTPSender(0).Send(ctx, Config{Host: "127.0.0.1", Port: 1}, Message{To: "x@example.com"})
	require.ErrorIs(t, err, context.Canceled)
}
