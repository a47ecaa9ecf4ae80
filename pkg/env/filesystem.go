package env

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Filesystem is a process-host Env: storage lives as one JSON file per
// key under root, generalized from saveGoCache/loadGoCache's gob-blob
// persistence (cmd/deflix-stremio/storage.go) to arbitrary
// JSON-serializable storage keys, one file each instead of one combined
// go-cache blob.
type Filesystem struct {
	fs     afero.Fs
	root   string
	client *http.Client
	logger *zap.Logger

	mu      sync.Mutex
	seqKeys map[string]*sync.Mutex
}

// NewFilesystem returns a Filesystem Env rooted at root, using fs for
// all file operations (afero.NewOsFs() in production, afero.NewMemMapFs()
// in tests).
func NewFilesystem(fs afero.Fs, root string, logger *zap.Logger) *Filesystem {
	return &Filesystem{
		fs:      fs,
		root:    root,
		client:  newHTTPClient(http.DefaultTransport, defaultHTTPTimeout),
		logger:  logger,
		seqKeys: map[string]*sync.Mutex{},
	}
}

func (f *Filesystem) path(key string) string {
	return filepath.Join(f.root, key+".json")
}

func (f *Filesystem) Fetch(ctx context.Context, req Request) (int, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, req.Body)
	if err != nil {
		return 0, nil, &Error{Kind: ErrNetwork, Message: "env: building request", Err: err}
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	resp, err := f.client.Do(httpReq)
	if err != nil {
		return 0, nil, &Error{Kind: ErrNetwork, Message: "env: fetching " + req.URL, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &Error{Kind: ErrNetwork, Message: "env: reading response body", Err: err}
	}
	return resp.StatusCode, body, nil
}

func (f *Filesystem) GetStorage(_ context.Context, key string) ([]byte, bool, error) {
	b, err := afero.ReadFile(f.fs, f.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &Error{Kind: ErrStorage, Message: "env: reading " + key, Err: err}
	}
	return b, true, nil
}

func (f *Filesystem) SetStorage(_ context.Context, key string, value []byte) error {
	if value == nil {
		err := f.fs.Remove(f.path(key))
		if err != nil && !os.IsNotExist(err) {
			return &Error{Kind: ErrStorage, Message: "env: removing " + key, Err: err}
		}
		return nil
	}
	if err := f.fs.MkdirAll(f.root, 0o755); err != nil {
		return &Error{Kind: ErrStorage, Message: "env: creating storage dir", Err: err}
	}
	if err := afero.WriteFile(f.fs, f.path(key), value, 0o644); err != nil {
		return &Error{Kind: ErrStorage, Message: "env: writing " + key, Err: err}
	}
	return nil
}

func (f *Filesystem) Now() time.Time { return time.Now() }

func (f *Filesystem) ExecConcurrent(task func(context.Context) error) {
	go func() {
		if err := task(context.Background()); err != nil {
			f.logger.Error("env: concurrent task failed", zap.Error(err))
		}
	}()
}

func (f *Filesystem) ExecSequential(key string, task func(context.Context) error) {
	f.mu.Lock()
	mu, ok := f.seqKeys[key]
	if !ok {
		mu = &sync.Mutex{}
		f.seqKeys[key] = mu
	}
	f.mu.Unlock()

	go func() {
		mu.Lock()
		defer mu.Unlock()
		if err := task(context.Background()); err != nil {
			f.logger.Error("env: sequential task failed", zap.String("key", key), zap.Error(err))
		}
	}()
}

func (f *Filesystem) FlushAnalytics(_ context.Context, event string, props map[string]interface{}) {
	f.logger.Debug("env: analytics event", zap.String("event", event), zap.Any("props", props))
}

var _ Env = (*Filesystem)(nil)
