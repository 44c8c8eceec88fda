package importjob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJob(t *testing.T) {
	t.Run("creates pending job", func(t *testing.T) {
		job, err := NewJob("statement.csv", "abc123.csv", 2048)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, job.Status)
		assert.Equal(t, "statement.csv", job.Filename)
		assert.Nil(t, job.RecordsImported)
		assert.Nil(t, job.ProcessedAt)
		assert.False(t, job.Terminal())
	})

	t.Run("rejects empty filename", func(t *testing.T) {
		_, err := NewJob("", "abc123.csv", 2048)
		assert.ErrorIs(t, err, ErrEmptyFilename)
	})
}

func TestJobLifecycle(t *testing.T) {
	t.Run("pending to processing to completed", func(t *testing.T) {
		job, err := NewJob("statement.csv", "abc123.csv", 2048)
		require.NoError(t, err)

		require.NoError(t, job.MarkProcessing())
		assert.Equal(t, StatusProcessing, job.Status)

		require.NoError(t, job.Complete(10, 3))
		assert.Equal(t, StatusCompleted, job.Status)
		require.NotNil(t, job.RecordsImported)
		assert.Equal(t, 10, *job.RecordsImported)
		assert.Equal(t, 3, *job.RecordsSkipped)
		assert.NotNil(t, job.ProcessedAt)
		assert.True(t, job.Terminal())
	})

	t.Run("fail clears counts", func(t *testing.T) {
		job, err := NewJob("statement.csv", "abc123.csv", 2048)
		require.NoError(t, err)
		require.NoError(t, job.MarkProcessing())

		require.NoError(t, job.Fail("unknown statement format"))
		assert.Equal(t, StatusFailed, job.Status)
		assert.Equal(t, "unknown statement format", job.ErrorMessage)
		assert.Nil(t, job.RecordsImported)
		assert.Nil(t, job.RecordsSkipped)
		assert.NotNil(t, job.ProcessedAt)
	})

	t.Run("terminal jobs reject further transitions", func(t *testing.T) {
		job, err := NewJob("statement.csv", "abc123.csv", 2048)
		require.NoError(t, err)
		require.NoError(t, job.Complete(1, 0))

		assert.ErrorIs(t, job.MarkProcessing(), ErrJobTerminal)
		assert.ErrorIs(t, job.Complete(2, 0), ErrJobTerminal)
		assert.ErrorIs(t, job.Fail("late failure"), ErrJobTerminal)
	})
}
