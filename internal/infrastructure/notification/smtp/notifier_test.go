package smtp

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Zhima-Mochi/pizzeria/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type fakeSender struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, msgs ...*mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msgs...)
	return nil
}

var receipt = notification.Message{
	Subject: "Your receipt",
	From:    "orders@pizzeria.local",
	To:      "alice@example.com",
	Body:    "You order was successful!",
}

func TestSend(t *testing.T) {
	fake := &fakeSender{}
	n := newNotifier(fake, nil)

	r, err := n.Send(context.Background(), receipt)
	require.NoError(t, err)
	assert.Equal(t, "smtp", r.Provider)
	assert.NotEmpty(t, r.ID)
	require.Len(t, fake.sent, 1)

	var buf bytes.Buffer
	_, err = fake.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Subject: Your receipt")
	assert.Contains(t, buf.String(), "alice@example.com")
	assert.Contains(t, buf.String(), r.ID)
}

func TestSendFailure(t *testing.T) {
	n := newNotifier(&fakeSender{err: errors.New("connection refused")}, nil)
	_, err := n.Send(context.Background(), receipt)
	assert.ErrorContains(t, err, "connection refused")
}

func TestSendRejectsBadAddress(t *testing.T) {
	fake := &fakeSender{}
	n := newNotifier(fake, nil)
	bad := receipt
	bad.To = "not an address"
	_, err := n.Send(context.Background(), bad)
	assert.Error(t, err)
	assert.Empty(t, fake.sent)
}

func TestTLSPolicy(t *testing.T) {
	p, err := tlsPolicy("")
	require.NoError(t, err)
	assert.Equal(t, mail.TLSMandatory, p)
	p, err = tlsPolicy("none")
	require.NoError(t, err)
	assert.Equal(t, mail.NoTLS, p)
	_, err = tlsPolicy("sometimes")
	assert.Error(t, err)
}
