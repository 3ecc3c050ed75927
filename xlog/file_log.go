package xlog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/safeopen"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/treex/lib/infra"
)

var _ zapcore.WriteSyncer = (*FileLog)(nil)

// FileLog appends the log records into a single file beneath a dir.
// The file is created lazily by the first write.
type FileLog struct {
	lock      sync.Mutex
	dir       string
	filename  string
	wroteSize uint64
	mkdirOnce sync.Once
	mkdirErr  error
	file      *os.File
	closed    bool
}

// NewFileLog returns a writer into dir/filename. An empty dir means the
// temp dir.
func NewFileLog(dir, filename string) (*FileLog, error) {
	if filename == "" || filename == "." || filename == ".." || strings.ContainsAny(filename, `/\`) {
		return nil, infra.NewErrorStack("invalid log filename <" + filename + ">")
	}
	if dir == "" {
		dir = os.TempDir()
	}
	return &FileLog{dir: dir, filename: filename}, nil
}

func (log *FileLog) Write(p []byte) (n int, err error) {
	log.lock.Lock()
	defer log.lock.Unlock()
	if log.closed {
		return 0, os.ErrClosed
	}
	if log.file == nil {
		if err = log.openOrCreate(); err != nil {
			return 0, err
		}
	}
	n, err = log.file.Write(p)
	log.wroteSize += uint64(n)
	return n, err
}

func (log *FileLog) Sync() error {
	log.lock.Lock()
	defer log.lock.Unlock()
	if log.file == nil {
		return nil
	}
	return log.file.Sync()
}

// WroteSize is the file size including the records written before the
// file was opened.
func (log *FileLog) WroteSize() uint64 {
	log.lock.Lock()
	defer log.lock.Unlock()
	return log.wroteSize
}

func (log *FileLog) Close() error {
	log.lock.Lock()
	defer log.lock.Unlock()
	log.closed = true
	if log.file == nil {
		return nil
	}
	err := log.file.Close()
	log.file = nil
	return infra.WrapErrorStack(err)
}

func (log *FileLog) mkdir() error {
	log.mkdirOnce.Do(func() {
		if log.dir == os.TempDir() {
			return
		}
		log.mkdirErr = infra.WrapErrorStack(os.MkdirAll(log.dir, 0o755))
	})
	return log.mkdirErr
}

func (log *FileLog) openOrCreate() error {
	if err := log.mkdir(); err != nil {
		return err
	}
	f, err := safeopen.OpenFileBeneath(log.dir, log.filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "unable to open log file <"+filepath.Join(log.dir, log.filename)+">")
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return infra.WrapErrorStack(err)
	}
	if info.IsDir() {
		_ = f.Close()
		return infra.NewErrorStack("log file <" + filepath.Join(log.dir, log.filename) + "> is a dir")
	}
	log.file = f
	log.wroteSize = uint64(info.Size())
	return nil
}
