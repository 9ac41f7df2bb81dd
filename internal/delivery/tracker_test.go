package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

type scriptedTransport struct {
	errs  []error
	calls int
}

func (s *scriptedTransport) SendMessage(context.Context, int64, string, *tele.ReplyMarkup) error {
	var err error
	if s.calls < len(s.errs) {
		err = s.errs[s.calls]
	}
	s.calls++
	return err
}

type flagRecorder struct {
	blocked   []int64
	unblocked []int64
}

func (f *flagRecorder) MarkBlocked(_ context.Context, id int64) error {
	f.blocked = append(f.blocked, id)
	return nil
}

func (f *flagRecorder) MarkUnblocked(_ context.Context, id int64) error {
	f.unblocked = append(f.unblocked, id)
	return nil
}

func TestSendMarksBlockedOnce(t *testing.T) {
	transport := &scriptedTransport{errs: []error{
		tele.ErrBlockedByUser,
		tele.ErrBlockedByUser,
		tele.ErrBlockedByUser,
	}}
	flags := &flagRecorder{}
	tr := NewTracker(transport, flags)

	for i := 0; i < 3; i++ {
		require.NoError(t, tr.Send(context.Background(), 7, "hi", nil))
	}

	assert.True(t, tr.Blocked(7))
	assert.Equal(t, []int64{7}, flags.blocked, "flag written once, repeats stay quiet")
	assert.Equal(t, 3, transport.calls, "sends are still attempted while blocked")
}

func TestSendUnblocksOnceOnRecovery(t *testing.T) {
	transport := &scriptedTransport{errs: []error{
		tele.ErrBlockedByUser,
		nil,
		nil,
	}}
	flags := &flagRecorder{}
	tr := NewTracker(transport, flags)

	require.NoError(t, tr.Send(context.Background(), 7, "a", nil))
	require.True(t, tr.Blocked(7))

	require.NoError(t, tr.Send(context.Background(), 7, "b", nil))
	assert.False(t, tr.Blocked(7))

	require.NoError(t, tr.Send(context.Background(), 7, "c", nil))
	assert.Equal(t, []int64{7}, flags.unblocked, "unblock flag written exactly once")
}

func TestSendPropagatesOtherErrors(t *testing.T) {
	boom := errors.New("connection reset")
	transport := &scriptedTransport{errs: []error{boom}}
	flags := &flagRecorder{}
	tr := NewTracker(transport, flags)

	err := tr.Send(context.Background(), 7, "hi", nil)
	assert.ErrorIs(t, err, boom)
	assert.False(t, tr.Blocked(7))
	assert.Empty(t, flags.blocked)
}

func TestRecipientUnreachableOn403(t *testing.T) {
	apiErr := &tele.Error{Code: 403, Description: "Forbidden: bot was kicked"}
	assert.True(t, recipientUnreachable(apiErr))
	assert.False(t, recipientUnreachable(&tele.Error{Code: 400, Description: "Bad Request"}))
}
