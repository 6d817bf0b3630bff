package tls

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// CertificateSource supplies the certificate for each handshake.
type CertificateSource interface {
	GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error)
}

// CertificateReloader serves a certificate pair from disk and, when
// watching, reloads it after either file changes. A pair that fails to
// load or validate is logged and the previous one stays in use.
type CertificateReloader struct {
	certFile string
	keyFile  string
	logger   *slog.Logger
	now      func() time.Time

	mu   sync.RWMutex
	cert *tls.Certificate

	watcher   *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
}

// NewCertificateReloader loads the pair once and, if watch is set, starts
// watching the directories that hold the files. Directories are watched
// rather than files so that atomic renames (as done by cert-manager and
// certbot) are seen.
func NewCertificateReloader(certFile, keyFile string, watch bool, logger *slog.Logger) (*CertificateReloader, error) {
	if logger == nil {
		logger = slog.Default()
	}

	r := &CertificateReloader{
		certFile: certFile,
		keyFile:  keyFile,
		logger:   logger.With("component", "tls"),
		now:      time.Now,
		done:     make(chan struct{}),
	}

	if err := r.reload(); err != nil {
		return nil, err
	}

	if !watch {
		return r, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("tls: failed to create watcher: %w", err)
	}
	dirs := map[string]struct{}{
		filepath.Dir(certFile): {},
		filepath.Dir(keyFile):  {},
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("tls: failed to watch %s: %w", dir, err)
		}
	}
	r.watcher = watcher

	go r.watchLoop()

	return r, nil
}

func (r *CertificateReloader) watchLoop() {
	certBase := filepath.Clean(r.certFile)
	keyBase := filepath.Clean(r.keyFile)

	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Clean(event.Name)
			if name != certBase && name != keyBase {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := r.reload(); err != nil {
				r.logger.Error("failed to reload certificate; keeping previous", "cert_file", r.certFile, "error", err)
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("certificate watcher error", "error", err)

		case <-r.done:
			return
		}
	}
}

func (r *CertificateReloader) reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("tls: failed to load certificate: %w", err)
	}

	now := r.now()
	leaf, err := ValidateCertificate(&cert, now)
	if err != nil {
		return fmt.Errorf("tls: %w", err)
	}
	cert.Leaf = leaf

	r.mu.Lock()
	r.cert = &cert
	r.mu.Unlock()

	attrs := []any{
		"subject", leaf.Subject.CommonName,
		"issuer", leaf.Issuer.CommonName,
		"expires_at", leaf.NotAfter.Format(time.RFC3339),
	}
	if ExpiresSoon(leaf, now) {
		r.logger.Warn("certificate expiring soon", attrs...)
	} else {
		r.logger.Info("certificate loaded", attrs...)
	}
	return nil
}

// GetCertificate implements CertificateSource.
func (r *CertificateReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert, nil
}

// Close stops watching. It is safe to call more than once.
func (r *CertificateReloader) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		if r.watcher != nil {
			err = r.watcher.Close()
		}
	})
	return err
}
