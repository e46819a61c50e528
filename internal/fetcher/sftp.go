// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sergei Gurin

// Package fetcher downloads the newest export file from the SFTP server the
// upstream system deposits its periodic snapshots on. The server's identity
// is verified against a pinned host key before anything is listed or
// transferred; an unknown host is never trusted silently.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/sgurin/geosync/internal/config"
	"github.com/sgurin/geosync/internal/logger"
)

type sftpFetcher struct {
	host    string
	folder  string
	pattern *regexp.Regexp
	sshConf *ssh.ClientConfig
	logger  *logger.Logger
}

// NewSFTPFetcher constructs a Fetcher over SFTP. The export pattern comes
// from fetchCfg and is compiled once; connection material comes from the
// secrets bundle. Returns an error if the pattern or the pinned host key is
// malformed.
func NewSFTPFetcher(secrets *config.Secrets, fetchCfg config.Fetch, log *logger.Logger) (Fetcher, error) {
	pattern, err := regexp.Compile(fetchCfg.ExportPattern)
	if err != nil {
		return nil, fmt.Errorf("compile export pattern: %w", err)
	}

	hostKeyCallback, err := pinnedHostKeyCallback(secrets.KnownHostKey)
	if err != nil {
		return nil, fmt.Errorf("parse pinned host key: %w", err)
	}

	return &sftpFetcher{
		host:    secrets.SFTPHost,
		folder:  secrets.SFTPFolder,
		pattern: pattern,
		sshConf: &ssh.ClientConfig{
			User:            secrets.SFTPUser,
			Auth:            []ssh.AuthMethod{ssh.Password(secrets.SFTPPassword)},
			HostKeyCallback: hostKeyCallback,
			Timeout:         30 * time.Second,
		},
		logger: log,
	}, nil
}

// Fetch implements [Fetcher]. It dials the server, lists the configured
// remote folder, selects the newest file matching the export pattern by
// modification time and downloads it into destDir under its remote name.
// The download is rejected as [ErrTransfer] if it is empty or shorter than
// the remote size reports.
func (f *sftpFetcher) Fetch(ctx context.Context, destDir string) (Export, error) {
	conn, err := ssh.Dial("tcp", f.host, f.sshConf)
	if err != nil {
		return Export{}, fmt.Errorf("dial %s: %w", f.host, connectionError(err))
	}
	defer conn.Close()

	client, err := sftp.NewClient(conn)
	if err != nil {
		return Export{}, fmt.Errorf("open sftp session: %w", connectionError(err))
	}
	defer client.Close()

	entries, err := client.ReadDir(f.folder)
	if err != nil {
		return Export{}, fmt.Errorf("list %s: %w", f.folder, connectionError(err))
	}

	newest, err := selectNewest(entries, f.pattern)
	if err != nil {
		return Export{}, fmt.Errorf("%w: no file in %s matches %s", err, f.folder, f.pattern)
	}

	f.logger.Info().
		Str("file", newest.Name()).
		Int64("size", newest.Size()).
		Time("modified", newest.ModTime()).
		Msg("downloading export")

	localPath := filepath.Join(destDir, newest.Name())
	written, err := f.download(ctx, client, path(f.folder, newest.Name()), localPath)
	if err != nil {
		return Export{}, err
	}

	if written == 0 || written < newest.Size() {
		_ = os.Remove(localPath)
		return Export{}, fmt.Errorf("%w: wrote %d of %d bytes for %s", ErrTransfer, written, newest.Size(), newest.Name())
	}

	return Export{
		LocalPath: localPath,
		Name:      newest.Name(),
		Size:      written,
		FetchedAt: time.Now(),
	}, nil
}

func (f *sftpFetcher) download(ctx context.Context, client *sftp.Client, remotePath, localPath string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	src, err := client.Open(remotePath)
	if err != nil {
		return 0, fmt.Errorf("open remote %s: %w", remotePath, connectionError(err))
	}
	defer src.Close()

	dst, err := os.Create(localPath)
	if err != nil {
		return 0, fmt.Errorf("create local %s: %w", localPath, err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		_ = os.Remove(localPath)
		return 0, fmt.Errorf("%w: copy %s: %s", ErrTransfer, remotePath, err)
	}

	return written, nil
}

// selectNewest returns the most recently modified regular file whose name
// matches pattern, or ErrNoExport when none does.
func selectNewest(entries []os.FileInfo, pattern *regexp.Regexp) (os.FileInfo, error) {
	var newest os.FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !pattern.MatchString(entry.Name()) {
			continue
		}
		if newest == nil || entry.ModTime().After(newest.ModTime()) {
			newest = entry
		}
	}

	if newest == nil {
		return nil, ErrNoExport
	}
	return newest, nil
}

// pinnedHostKeyCallback builds an ssh.HostKeyCallback from the pinned key
// material: either a "SHA256:..." fingerprint or a full OpenSSH
// authorized-key line. A mismatch fails with ErrUntrustedHost before any
// channel is opened.
func pinnedHostKeyCallback(pin string) (ssh.HostKeyCallback, error) {
	pin = strings.TrimSpace(pin)

	if strings.HasPrefix(pin, "SHA256:") {
		return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			if got := ssh.FingerprintSHA256(key); got != pin {
				return fmt.Errorf("%w: %s presented %s, pinned %s", ErrUntrustedHost, hostname, got, pin)
			}
			return nil
		}, nil
	}

	pinned, _, _, _, err := ssh.ParseAuthorizedKey([]byte(pin))
	if err != nil {
		return nil, err
	}
	fixed := ssh.FixedHostKey(pinned)

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		if err := fixed(hostname, remote, key); err != nil {
			return fmt.Errorf("%w: %s presented a key that does not match the pinned key", ErrUntrustedHost, hostname)
		}
		return nil
	}, nil
}

// connectionError folds a transport error into the taxonomy while keeping an
// ErrUntrustedHost chain intact (the ssh handshake wraps our callback error).
func connectionError(err error) error {
	if errors.Is(err, ErrUntrustedHost) || strings.Contains(err.Error(), ErrUntrustedHost.Error()) {
		return fmt.Errorf("%w: %s", ErrUntrustedHost, err)
	}
	return fmt.Errorf("%w: %s", ErrConnection, err)
}

// path joins remote folder and name with forward slashes regardless of the
// local OS separator.
func path(folder, name string) string {
	return strings.TrimRight(folder, "/") + "/" + name
}
