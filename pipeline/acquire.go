package pipeline

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/skillsenselab/scribe/errors"
	"github.com/skillsenselab/scribe/logger"
	"github.com/skillsenselab/scribe/objectstore"
)

const defaultSignedURLTTL = 15 * time.Minute

// Acquirer fetches a recording from the object store into a workspace.
type Acquirer struct {
	store  objectstore.Store
	client *http.Client
	urlTTL time.Duration
	log    *logger.Logger
}

// NewAcquirer creates an Acquirer over the given object store.
func NewAcquirer(store objectstore.Store, log *logger.Logger) *Acquirer {
	return &Acquirer{
		store:  store,
		client: &http.Client{Timeout: 30 * time.Minute},
		urlTTL: defaultSignedURLTTL,
		log:    log.WithComponent("acquire"),
	}
}

// Acquire obtains a signed URL for recordingPath, streams the bytes into the
// workspace, and returns the local file path. The local file keeps the
// source extension so downstream tools can sniff the container.
func (a *Acquirer) Acquire(ctx context.Context, recordingPath string, ws *Workspace) (string, error) {
	signedURL, err := a.store.SignedURL(ctx, recordingPath, a.urlTTL)
	if err != nil {
		return "", errors.Storage("signed URL", err).WithDetail("path", recordingPath)
	}

	ext := filepath.Ext(recordingPath)
	if ext == "" {
		ext = ".audio"
	}
	localPath := ws.Path("source" + ext)

	if err := a.fetch(ctx, signedURL, localPath, recordingPath); err != nil {
		return "", err
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return "", errors.Integrity(localPath, "file absent after download")
	}
	if info.Size() == 0 {
		return "", errors.Integrity(localPath, "zero length")
	}

	a.log.Debug("recording acquired", logger.Fields("path", recordingPath, "bytes", info.Size()))
	return localPath, nil
}

func (a *Acquirer) fetch(ctx context.Context, signedURL, localPath, recordingPath string) error {
	u, err := url.Parse(signedURL)
	if err != nil {
		return errors.Download(recordingPath, 0).WithCause(err)
	}

	// The local backend hands out file:// URLs; copy directly.
	if u.Scheme == "file" {
		return a.copyLocal(u.Path, localPath, recordingPath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signedURL, nil)
	if err != nil {
		return errors.Download(recordingPath, 0).WithCause(err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return errors.Download(recordingPath, 0).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Download(recordingPath, resp.StatusCode)
	}

	return writeStream(resp.Body, localPath, recordingPath)
}

func (a *Acquirer) copyLocal(srcPath, localPath, recordingPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return errors.Download(recordingPath, 0).WithCause(err)
	}
	defer src.Close()
	return writeStream(src, localPath, recordingPath)
}

func writeStream(r io.Reader, localPath, recordingPath string) error {
	dst, err := os.Create(localPath)
	if err != nil {
		return errors.Download(recordingPath, 0).WithCause(err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return errors.Download(recordingPath, 0).WithCause(err)
	}
	return nil
}
