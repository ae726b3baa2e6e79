package filelog

import (
	"encoding/binary"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
)

const (
	// headerSize holds the flushed offset, records follow it.
	headerSize = 8

	defaultFlushEvery = time.Second
)

var littleEndian = binary.LittleEndian

var (
	errCorruptJournal = errors.New("corrupt journal")
	// ErrClosed write after Close
	ErrClosed = errors.New("journal closed")
)

// SubFunc consumes one batch of journaled records. A non-nil error leaves
// the batch in the journal for a later retry.
type SubFunc func(records [][]byte) error

// Config Config
type Config struct {
	File       string
	SubFunc    SubFunc
	FlushEvery time.Duration
}

type writeReq struct {
	record []byte
	err    chan error
}

// FileLog 先落盘再异步批量下沉的记录日志. Writes append length-prefixed
// records to the file; a background flush hands everything unflushed to
// SubFunc and truncates the file once it caught up. One goroutine owns the
// file, there is no locking.
type FileLog struct {
	file *os.File
	sub  SubFunc

	writeCh chan writeReq
	quit    chan struct{}

	writeOff   int64
	flushedOff int64
}

// NewFileLog 根据文件路径创建一个 FileLog
func NewFileLog(config *Config) (*FileLog, error) {
	f, err := os.OpenFile(config.File, os.O_CREATE|os.O_RDWR, os.ModePerm)
	if err != nil {
		return nil, err
	}

	flog := &FileLog{
		file:    f,
		sub:     config.SubFunc,
		writeCh: make(chan writeReq),
		quit:    make(chan struct{}),
	}
	if err := flog.recover(); err != nil {
		f.Close()
		return nil, err
	}

	flushEvery := config.FlushEvery
	if flushEvery <= 0 {
		flushEvery = defaultFlushEvery
	}
	go flog.loop(flushEvery)

	return flog, nil
}

// recover reads the offsets left by a previous run. Records between the
// flushed offset and the file end are re-delivered by the first flush.
func (flog *FileLog) recover() error {
	info, err := flog.file.Stat()
	if err != nil {
		return err
	}
	flog.writeOff = info.Size()
	if flog.writeOff < headerSize {
		return flog.reset()
	}

	buf := make([]byte, headerSize)
	if _, err := flog.file.ReadAt(buf, 0); err != nil {
		return err
	}
	flog.flushedOff = int64(littleEndian.Uint64(buf))
	if flog.flushedOff < headerSize || flog.flushedOff > flog.writeOff {
		return flog.reset()
	}
	return nil
}

func (flog *FileLog) reset() error {
	flog.writeOff = headerSize
	flog.flushedOff = headerSize
	if err := flog.file.Truncate(headerSize); err != nil {
		return err
	}
	return flog.writeHeader()
}

func (flog *FileLog) writeHeader() error {
	buf := make([]byte, headerSize)
	littleEndian.PutUint64(buf, uint64(flog.flushedOff))
	_, err := flog.file.WriteAt(buf, 0)
	return err
}

// Write 写一条记录到文件, returns once the record is on disk.
func (flog *FileLog) Write(record []byte) error {
	select {
	case <-flog.quit:
		return ErrClosed
	default:
	}
	req := writeReq{record: record, err: make(chan error, 1)}
	select {
	case flog.writeCh <- req:
		return <-req.err
	case <-flog.quit:
		return ErrClosed
	}
}

func (flog *FileLog) loop(flushEvery time.Duration) {
	ticker := time.NewTicker(flushEvery)
	defer func() {
		ticker.Stop()
		flog.file.Close()
	}()
	for {
		select {
		case req := <-flog.writeCh:
			req.err <- flog.append(req.record)
		case <-ticker.C:
			if err := flog.flush(); err != nil {
				log.Println("filelog flush:", err)
			}
		case <-flog.quit:
			if err := flog.flush(); err != nil {
				log.Println("filelog flush:", err)
			}
			return
		}
	}
}

func (flog *FileLog) append(record []byte) error {
	buf := make([]byte, 4+len(record))
	littleEndian.PutUint32(buf, uint32(len(record)))
	copy(buf[4:], record)
	if _, err := flog.file.WriteAt(buf, flog.writeOff); err != nil {
		return err
	}
	flog.writeOff += int64(len(buf))
	return nil
}

func (flog *FileLog) flush() error {
	if flog.flushedOff == flog.writeOff {
		return nil
	}

	buf := make([]byte, flog.writeOff-flog.flushedOff)
	if _, err := flog.file.ReadAt(buf, flog.flushedOff); err != nil {
		return err
	}
	records := make([][]byte, 0)
	for off := 0; off < len(buf); {
		if off+4 > len(buf) {
			return errCorruptJournal
		}
		rlen := int(littleEndian.Uint32(buf[off:]))
		off += 4
		if off+rlen > len(buf) {
			return errCorruptJournal
		}
		records = append(records, buf[off:off+rlen])
		off += rlen
	}

	if err := flog.sub(records); err != nil {
		// left in place, retried on the next tick
		return err
	}
	flog.flushedOff = flog.writeOff
	return flog.reset()
}

// Close flushes what is pending and closes the file.
func (flog *FileLog) Close() {
	close(flog.quit)
}
