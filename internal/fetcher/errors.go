package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection covers every failure to establish or keep a usable
	// session with the export file server.
	ErrConnection = errors.New("file server connection failed")

	// ErrUntrustedHost is a connection failure caused by the server
	// presenting a key that does not match the pinned one. It wraps
	// ErrConnection, so errors.Is(err, ErrConnection) holds as well.
	ErrUntrustedHost = fmt.Errorf("%w: host key verification failed", ErrConnection)

	// ErrNoExport means the remote folder contains no file matching the
	// configured export pattern.
	ErrNoExport = errors.New("no export file found")

	// ErrTransfer means the download completed but produced a truncated or
	// empty local file.
	ErrTransfer = errors.New("export transfer corrupted")
)
