package filelog

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLogFlush(t *testing.T) {
	tempfile := filepath.Join(t.TempDir(), "test.log")

	var mu sync.Mutex
	received := make([]string, 0)
	quit := make(chan struct{})

	msgCount := 100
	flog, err := NewFileLog(&Config{
		File:       tempfile,
		FlushEvery: 10 * time.Millisecond,
		SubFunc: func(records [][]byte) error {
			mu.Lock()
			defer mu.Unlock()
			for _, record := range records {
				received = append(received, string(record))
			}
			if len(received) == msgCount {
				close(quit)
			}
			return nil
		},
	})
	require.NoError(t, err)

	for index := 0; index < msgCount; index++ {
		require.NoError(t, flog.Write([]byte(fmt.Sprintf("record %v", index))))
	}

	select {
	case <-quit:
	case <-time.After(3 * time.Second):
		t.Fatal("flush did not deliver all records")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, msgCount)
	// delivery preserves write order
	for index, record := range received {
		assert.Equal(t, fmt.Sprintf("record %v", index), record)
	}
}

func TestFileLogRecover(t *testing.T) {
	tempfile := filepath.Join(t.TempDir(), "test.log")

	// a sub that always fails keeps records in the journal
	flog, err := NewFileLog(&Config{
		File:       tempfile,
		FlushEvery: time.Hour,
		SubFunc: func(records [][]byte) error {
			return fmt.Errorf("store down")
		},
	})
	require.NoError(t, err)
	require.NoError(t, flog.Write([]byte("survivor")))
	flog.Close()
	time.Sleep(50 * time.Millisecond)

	received := make(chan string, 1)
	flog2, err := NewFileLog(&Config{
		File:       tempfile,
		FlushEvery: 10 * time.Millisecond,
		SubFunc: func(records [][]byte) error {
			for _, record := range records {
				received <- string(record)
			}
			return nil
		},
	})
	require.NoError(t, err)
	defer flog2.Close()

	select {
	case record := <-received:
		assert.Equal(t, "survivor", record)
	case <-time.After(3 * time.Second):
		t.Fatal("record lost across restart")
	}
}

func TestFileLogWriteAfterClose(t *testing.T) {
	tempfile := filepath.Join(t.TempDir(), "test.log")
	flog, err := NewFileLog(&Config{
		File:    tempfile,
		SubFunc: func(records [][]byte) error { return nil },
	})
	require.NoError(t, err)

	flog.Close()
	err = flog.Write([]byte("late"))
	assert.ErrorIs(t, err, ErrClosed)
}
