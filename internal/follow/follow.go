package follow

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	ErrTruncated = errors.New("source truncated")
	ErrRotated   = errors.New("source rotated")
)

// Source yields bytes appended to a data source since a previous offset.
// A nil chunk with a nil error means no new data yet; io.EOF means the
// source can produce nothing further.
type Source interface {
	ReadNewBytesSince(offset int64) ([]byte, error)
}

// FileSource follows a file on disk. It detects truncation by a size
// regression and rotation by the directory entry no longer naming the file
// it was opened on.
type FileSource struct {
	path string
	file *os.File
	info os.FileInfo
}

func NewFileSource(path string, file *os.File) (*FileSource, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return &FileSource{path: path, file: file, info: info}, nil
}

func (s *FileSource) ReadNewBytesSince(offset int64) ([]byte, error) {
	current, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRotated, err)
	}
	if !os.SameFile(s.info, current) {
		return nil, ErrRotated
	}
	size := current.Size()
	if size < offset {
		return nil, ErrTruncated
	}
	if size == offset {
		return nil, nil
	}
	chunk := make([]byte, size-offset)
	n, err := s.file.ReadAt(chunk, offset)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return chunk[:n], nil
}

// ReaderSource follows a stream such as a stdin pipe. Reads happen on an
// internal goroutine because a blocked pipe read cannot be interrupted;
// ReadNewBytesSince only drains what has already arrived.
type ReaderSource struct {
	chunks chan []byte
	once   sync.Once
	r      io.Reader
}

func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: r, chunks: make(chan []byte, 16)}
}

func (s *ReaderSource) ReadNewBytesSince(offset int64) ([]byte, error) {
	s.once.Do(func() {
		go func() {
			defer close(s.chunks)
			buf := make([]byte, 32*1024)
			for {
				n, err := s.r.Read(buf)
				if n > 0 {
					chunk := make([]byte, n)
					copy(chunk, buf[:n])
					s.chunks <- chunk
				}
				if err != nil {
					return
				}
			}
		}()
	})

	var out []byte
	for {
		select {
		case chunk, ok := <-s.chunks:
			if !ok {
				if len(out) > 0 {
					return out, nil
				}
				return nil, io.EOF
			}
			out = append(out, chunk...)
		default:
			return out, nil
		}
	}
}

// Ingestor polls a Source on its own goroutine and delivers appended bytes
// over a channel. The consumer owns the line store; the ingestor never
// touches it.
type Ingestor struct {
	src      Source
	offset   int64
	interval time.Duration

	chunks chan []byte
	errs   chan error
	stop   chan struct{}
	done   chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

func NewIngestor(src Source, offset int64, interval time.Duration) *Ingestor {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	return &Ingestor{
		src:      src,
		offset:   offset,
		interval: interval,
		chunks:   make(chan []byte, 16),
		errs:     make(chan error, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Chunks delivers appended byte chunks in arrival order.
func (in *Ingestor) Chunks() <-chan []byte {
	return in.chunks
}

// Anomalies delivers at most one source anomaly, after which ingestion has
// halted.
func (in *Ingestor) Anomalies() <-chan error {
	return in.errs
}

// Start launches the poll goroutine. Calling it again is a no-op.
func (in *Ingestor) Start() {
	in.startOnce.Do(func() {
		go in.run()
	})
}

// Stop halts polling and returns once the poll goroutine has exited.
func (in *Ingestor) Stop() {
	in.Start()
	in.stopOnce.Do(func() {
		close(in.stop)
	})
	<-in.done
}

func (in *Ingestor) run() {
	defer close(in.done)
	ticker := time.NewTicker(in.interval)
	defer ticker.Stop()
	for {
		select {
		case <-in.stop:
			return
		case <-ticker.C:
			chunk, err := in.src.ReadNewBytesSince(in.offset)
			if err == io.EOF {
				return
			}
			if err != nil {
				select {
				case in.errs <- err:
				default:
				}
				return
			}
			if len(chunk) == 0 {
				continue
			}
			in.offset += int64(len(chunk))
			select {
			case in.chunks <- chunk:
			case <-in.stop:
				return
			}
		}
	}
}
