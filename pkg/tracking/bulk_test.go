package tracking_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/template"
	"github.com/dmitrymomot/notifykit/pkg/tracking"
)

func TestBulkSenderSplitsIntoPacedBatches(t *testing.T) {
	t.Parallel()

	store := tracking.NewMemoryStore()
	mailer := newStubMailer()
	sender := tracking.NewSender(store, mailer, "noreply@example.com")
	bulk := tracking.NewBulkSender(sender, nil)

	recipients := make([]tracking.BulkRecipient, 120)
	for i := range recipients {
		recipients[i] = tracking.BulkRecipient{Address: fmt.Sprintf("user%d@example.com", i)}
	}

	const batchDelay = 30 * time.Millisecond
	started := time.Now()
	results, err := bulk.SendBulk(context.Background(), tracking.BulkInput{
		Recipients: recipients,
		Subject:    "Campaign",
		HTML:       "<p>Offer</p>",
		Category:   "general",
		BatchSize:  50,
		BatchDelay: batchDelay,
	})
	elapsed := time.Since(started)

	require.NoError(t, err)
	require.Len(t, results, 120)
	assert.Equal(t, int64(120), mailer.calls.Load(), "every recipient gets exactly one send")

	// 120 recipients at batch size 50 is 3 batches, so 2 pacing delays.
	assert.GreaterOrEqual(t, elapsed, 2*batchDelay, "pacing delay must be observed between batches")

	for i, res := range results {
		assert.Equal(t, recipients[i].Address, res.Address, "results keep input order")
		require.NoError(t, res.Err)
		require.NotNil(t, res.Message)
		assert.Equal(t, tracking.StatusSent, res.Message.Status)
	}
}

func TestBulkSenderPerRecipientFailureIsNotBatchFatal(t *testing.T) {
	t.Parallel()

	store := tracking.NewMemoryStore()
	mailer := newStubMailer()
	mailer.failFor["bad@example.com"] = true
	sender := tracking.NewSender(store, mailer, "noreply@example.com")
	bulk := tracking.NewBulkSender(sender, nil)

	results, err := bulk.SendBulk(context.Background(), tracking.BulkInput{
		Recipients: []tracking.BulkRecipient{
			{Address: "ok@example.com"},
			{Address: "bad@example.com"},
			{Address: "also-ok@example.com"},
		},
		Subject:  "Campaign",
		Category: "general",
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, tracking.StatusSent, results[0].Message.Status)
	// The provider failure lives on the tracked row, not as a send error.
	require.NoError(t, results[1].Err)
	assert.Equal(t, tracking.StatusFailed, results[1].Message.Status)
	assert.Equal(t, tracking.StatusSent, results[2].Message.Status)
}

func TestBulkSenderPersonalizesPerRecipient(t *testing.T) {
	t.Parallel()

	store := tracking.NewMemoryStore()
	sender := tracking.NewSender(store, newStubMailer(), "noreply@example.com")
	bulk := tracking.NewBulkSender(sender, nil)

	results, err := bulk.SendBulk(context.Background(), tracking.BulkInput{
		Recipients: []tracking.BulkRecipient{
			{Address: "jane@example.com", Vars: map[string]string{"firstName": "Jane"}},
			{Address: "amir@example.com", Vars: map[string]string{"firstName": "Amir"}},
		},
		Subject:  "Hello {{.firstName}}",
		Text:     "Hi {{.firstName}}!",
		Category: "general",
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Hello Jane", results[0].Message.Subject)
	assert.Equal(t, "Hello Amir", results[1].Message.Subject)
	assert.Equal(t, "Hi Amir!", results[1].Message.TextBody)
}

func TestBulkSenderResolvesNamedTemplate(t *testing.T) {
	t.Parallel()

	store := tracking.NewMemoryStore()
	sender := tracking.NewSender(store, newStubMailer(), "noreply@example.com")
	resolver := template.NewResolver(nil)
	bulk := tracking.NewBulkSender(sender, resolver)

	results, err := bulk.SendBulk(context.Background(), tracking.BulkInput{
		Recipients: []tracking.BulkRecipient{
			{Address: "jane@example.com", UserID: "usr_1", Vars: map[string]string{"firstName": "Jane"}},
		},
		TemplateName: "welcome",
		Category:     "welcome",
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.NotEmpty(t, results[0].Message.Subject)
	assert.Equal(t, "welcome", results[0].Message.RelatedTemplateID)
	assert.Equal(t, "usr_1", results[0].Message.RelatedUserID)
}

func TestBulkSenderInputValidation(t *testing.T) {
	t.Parallel()

	sender := tracking.NewSender(tracking.NewMemoryStore(), newStubMailer(), "noreply@example.com")
	bulk := tracking.NewBulkSender(sender, nil)

	_, err := bulk.SendBulk(context.Background(), tracking.BulkInput{Subject: "Hi"})
	require.ErrorIs(t, err, tracking.ErrInvalidInput)

	_, err = bulk.SendBulk(context.Background(), tracking.BulkInput{
		Recipients: []tracking.BulkRecipient{{Address: "jane@example.com"}},
	})
	require.ErrorIs(t, err, tracking.ErrInvalidInput)

	_, err = bulk.SendBulk(context.Background(), tracking.BulkInput{
		Recipients:   []tracking.BulkRecipient{{Address: "jane@example.com"}},
		TemplateName: "welcome",
	})
	require.ErrorIs(t, err, tracking.ErrInvalidInput, "template name without resolver")
}
